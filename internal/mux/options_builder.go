package mux

import (
	"fmt"
	"math"
	"strings"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
)

// OptionsBuilder renders a MergePlan as an mkvmerge command-line token
// stream.
type OptionsBuilder struct {
	Plan       MergePlan
	Postprocess conf.PostprocessConfig
	OutputPath string
}

// Build returns the full token stream per the canonical layout:
// -o, global options, chapters, per-track options and files, attachments,
// track order.
func (b OptionsBuilder) Build() []string {
	var tokens []string

	tokens = append(tokens, "-o", b.OutputPath)

	if b.Postprocess.DisableTrackStatsTags {
		tokens = append(tokens, "--disable-track-statistics-tags")
	}

	if b.Plan.ChaptersXML != "" {
		tokens = append(tokens, "--chapters", b.Plan.ChaptersXML)
	}

	for _, item := range b.Plan.Items {
		tokens = append(tokens, b.trackTokens(item)...)
	}

	for _, attachment := range b.Plan.Attachments {
		tokens = append(tokens, "--attach-file", attachment)
	}

	tokens = append(tokens, b.trackOrderTokens()...)

	return tokens
}

// trackTokens renders the options and file group for a single plan item.
// Track ID within the extracted/source file is always "0" — each item is
// its own single-track file by the time it reaches mkvmerge.
func (b OptionsBuilder) trackTokens(item PlanItem) []string {
	const trackID = "0"
	var tokens []string

	lang := item.CustomLang
	if lang == "" && item.Props.Lang != "" && item.Props.Lang != "und" {
		lang = item.Props.Lang
	}
	if lang != "" {
		tokens = append(tokens, "--language", trackID+":"+lang)
	}

	name := item.CustomName
	if name == "" {
		name = item.Props.Name
	}
	if name != "" {
		tokens = append(tokens, "--track-name", trackID+":"+name)
	}

	if math.Abs(item.ContainerDelayMsRaw) >= 0.001 {
		rounded := int64(math.Round(item.ContainerDelayMsRaw))
		tokens = append(tokens, "--sync", fmt.Sprintf("%s:%+d", trackID, rounded))
	}

	defaultFlag := "no"
	if item.IsDefault {
		defaultFlag = "yes"
	}
	tokens = append(tokens, "--default-track-flag", trackID+":"+defaultFlag)

	if item.IsForcedDisplay && item.TrackType == TrackSubtitle {
		tokens = append(tokens, "--forced-display-flag", trackID+":yes")
	}

	if b.Postprocess.DisableHeaderCompression {
		tokens = append(tokens, "--compression", trackID+":none")
	}

	if b.Postprocess.ApplyDialogNormRemoval && item.TrackType == TrackAudio {
		codec := strings.ToLower(item.Props.CodecID)
		if strings.Contains(codec, "ac3") || strings.Contains(codec, "eac3") {
			tokens = append(tokens, "--remove-dialog-normalization-gain", trackID)
		}
	}

	filePath := item.ExtractedPath
	if filePath == "" {
		filePath = item.SourcePath
	}
	tokens = append(tokens, "(", filePath, ")")

	return tokens
}

func (b OptionsBuilder) trackOrderTokens() []string {
	if len(b.Plan.Items) == 0 {
		return nil
	}
	entries := make([]string, len(b.Plan.Items))
	for i := range b.Plan.Items {
		entries[i] = fmt.Sprintf("%d:0", i)
	}
	return []string{"--track-order", strings.Join(entries, ",")}
}

// FormatPretty renders tokens one option (and its value) per line, for
// human-readable logging of the constructed command.
func FormatPretty(tokens []string) string {
	var b strings.Builder
	i := 0
	for i < len(tokens) {
		token := tokens[i]
		switch {
		case strings.HasPrefix(token, "-") && i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-"):
			fmt.Fprintf(&b, "%s %s \\\n", token, tokens[i+1])
			i += 2
		case token == "(" || token == ")":
			fmt.Fprintf(&b, "%s\n", token)
			i++
		default:
			fmt.Fprintf(&b, "%s \\\n", token)
			i++
		}
	}
	return b.String()
}
