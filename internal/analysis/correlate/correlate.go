// Package correlate computes FFT-based cross-correlation between two
// audio chunks using one of four weighting schemes (SCC, GCC-PHAT,
// GCC-SCOT, Whitened). The output is a real-valued correlation buffer
// centered on zero lag; peak location and confidence scoring are the
// responsibility of the peak package.
package correlate

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// Method names accepted by Correlate.
const (
	MethodSCC      = "scc"
	MethodGCCPHAT  = "gcc-phat"
	MethodGCCSCOT  = "gcc-scot"
	MethodWhitened = "whitened"
)

// Buffer is a centered cross-correlation array: index len(buf)/2 is zero
// lag, earlier indices are negative lags, later indices positive lags.
type Buffer []float64

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func toComplex(samples []float64, n int) []complex128 {
	out := make([]complex128, n)
	for i, s := range samples {
		out[i] = complex(s, 0)
	}
	return out
}

// Correlate computes the cross-correlation of reference and other using
// the named method, returning a centered real-valued buffer of length
// nextPowerOfTwo(len(reference)+len(other)-1).
func Correlate(method string, reference, other []float64) (Buffer, error) {
	if len(reference) == 0 || len(other) == 0 {
		return nil, vsgerrors.New(vsgerrors.NewStd("empty audio chunk")).
			Kind(vsgerrors.InvalidAudio).
			Build()
	}

	n := len(reference) + len(other) - 1
	fftLen := nextPowerOfTwo(n)

	refSpec := fft.FFT(toComplex(reference, fftLen))
	otherSpec := fft.FFT(toComplex(other, fftLen))

	cross := make([]complex128, fftLen)
	for i := range cross {
		cross[i] = refSpec[i] * cmplx.Conj(otherSpec[i])
	}

	switch method {
	case MethodSCC, "":
		applyNormalization(cross, reference, other)
	case MethodGCCPHAT:
		applyPHAT(cross)
	case MethodGCCSCOT:
		applySCOT(cross, refSpec, otherSpec)
	case MethodWhitened:
		return correlateWhitened(refSpec, otherSpec, fftLen)
	default:
		return nil, vsgerrors.Newf("unknown correlation method %q", method).
			Kind(vsgerrors.ParseError).
			Build()
	}

	return center(inverseReal(cross, fftLen)), nil
}

// applyNormalization implements the SCC method: plain cross-power
// spectrum, normalized by the geometric mean of signal energies.
func applyNormalization(cross []complex128, reference, other []float64) {
	var refEnergy, otherEnergy float64
	for _, x := range reference {
		refEnergy += x * x
	}
	for _, x := range other {
		otherEnergy += x * x
	}
	norm := math.Sqrt(refEnergy * otherEnergy)
	if norm <= 1e-10 {
		return
	}
	for i := range cross {
		cross[i] /= complex(norm, 0)
	}
}

// applyPHAT implements GCC-PHAT: normalize the cross-power spectrum by
// its own magnitude, keeping only phase information.
func applyPHAT(cross []complex128) {
	for i, v := range cross {
		mag := cmplx.Abs(v)
		if mag > 1e-9 {
			cross[i] = v / complex(mag, 0)
		}
	}
}

// applySCOT implements GCC-SCOT: normalize by the geometric mean of the
// two signals' auto-spectra, weighting frequencies where both are strong.
func applySCOT(cross, refSpec, otherSpec []complex128) {
	for i, v := range cross {
		rPower := real(refSpec[i])*real(refSpec[i]) + imag(refSpec[i])*imag(refSpec[i])
		tPower := real(otherSpec[i])*real(otherSpec[i]) + imag(otherSpec[i])*imag(otherSpec[i])
		weight := math.Sqrt(rPower*tPower) + 1e-9
		cross[i] = v / complex(weight, 0)
	}
}

// correlateWhitened implements Whitened cross-correlation: both spectra
// are whitened (magnitude normalized, phase preserved) before the
// cross-power spectrum is formed, rather than weighting the cross-power
// spectrum itself.
func correlateWhitened(refSpec, otherSpec []complex128, fftLen int) (Buffer, error) {
	whitenedRef := make([]complex128, fftLen)
	whitenedOther := make([]complex128, fftLen)
	for i := range refSpec {
		if mag := cmplx.Abs(refSpec[i]); mag > 1e-9 {
			whitenedRef[i] = refSpec[i] / complex(mag, 0)
		}
		if mag := cmplx.Abs(otherSpec[i]); mag > 1e-9 {
			whitenedOther[i] = otherSpec[i] / complex(mag, 0)
		}
	}

	cross := make([]complex128, fftLen)
	for i := range cross {
		cross[i] = whitenedRef[i] * cmplx.Conj(whitenedOther[i])
	}

	return center(inverseReal(cross, fftLen)), nil
}

func inverseReal(spectrum []complex128, fftLen int) []float64 {
	ifftOut := fft.IFFT(spectrum)
	out := make([]float64, fftLen)
	for i, c := range ifftOut {
		out[i] = real(c)
	}
	return out
}

// center rotates a correlation array so that zero lag sits at the
// midpoint: index (i+half)%fftLen moves to i, matching the convention
// that negative lags precede zero lag which precedes positive lags.
func center(correlation []float64) Buffer {
	fftLen := len(correlation)
	half := fftLen / 2
	centered := make([]float64, fftLen)
	for i := 0; i < fftLen; i++ {
		newIdx := (i + half) % fftLen
		centered[newIdx] = correlation[i]
	}
	return centered
}
