package cli

import (
	"fmt"
	"io"
	"sort"
	"time"
)

type BuildStep struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Success   bool
	Skipped   bool
	Error     string
}

type reportOutput interface {
	Green(text string) string
	Yellow(text string) string
	Red(text string) string
	Gray(text string) string
	Writer() io.Writer
	ErrWriter() io.Writer
}

type BuildIssue struct {
	Subject string
	Message string
	Details []string
}

type AssetSize struct {
	Name string
	Size int
}

type BuildReport struct {
	output      reportOutput
	steps       []BuildStep
	warnings    []BuildIssue
	errors      []BuildIssue
	assets      []AssetSize
	startTime   time.Time
	localeCount int
	artifacts   int
	descriptors int
	outputDir   string
	hasFailures bool
}

func NewBuildReport(output reportOutput, outputDir string) *BuildReport {
	return &BuildReport{
		output:    output,
		steps:     make([]BuildStep, 0),
		warnings:  make([]BuildIssue, 0),
		errors:    make([]BuildIssue, 0),
		startTime: time.Now(),
		outputDir: outputDir,
	}
}

func (r *BuildReport) SetPrerenderCounts(locales, artifacts, descriptors int) {
	r.localeCount = locales
	r.artifacts = artifacts
	r.descriptors = descriptors
}

func (r *BuildReport) SetAssets(assets []AssetSize) {
	r.assets = append([]AssetSize(nil), assets...)
	sort.SliceStable(r.assets, func(i, j int) bool {
		return r.assets[i].Size > r.assets[j].Size
	})
}

func (r *BuildReport) StartStep(name string) *BuildStep {
	step := BuildStep{
		Name:      name,
		StartTime: time.Now(),
	}
	r.steps = append(r.steps, step)
	return &r.steps[len(r.steps)-1]
}

func (r *BuildReport) EndStep(step *BuildStep, success bool, err string) {
	step.EndTime = time.Now()
	step.Success = success
	step.Error = err
	if !success {
		r.hasFailures = true
	}
}

// SkipStep ends a step that did not run its work. The build still succeeds;
// the cause belongs in a warning.
func (r *BuildReport) SkipStep(step *BuildStep, reason string) {
	step.EndTime = time.Now()
	step.Success = true
	step.Skipped = true
	step.Error = reason
}

func (r *BuildReport) AddWarning(subject string, message string, details []string) {
	r.warnings = append(r.warnings, BuildIssue{
		Subject: subject,
		Message: message,
		Details: details,
	})
}

func (r *BuildReport) AddError(subject string, message string, details []string) {
	r.errors = append(r.errors, BuildIssue{
		Subject: subject,
		Message: message,
		Details: details,
	})
	r.hasFailures = true
}

func (r *BuildReport) Warnings() []BuildIssue {
	return r.warnings
}

func (r *BuildReport) Render() {
	duration := time.Since(r.startTime)

	if len(r.errors) == 0 && len(r.warnings) == 0 {
		r.renderMinimal(duration)
	} else {
		r.renderVerbose(duration)
	}
}

func (r *BuildReport) renderCounts(w io.Writer, mark string) {
	fmt.Fprintf(w, "  %s%d locales prerendered, %d artifacts, %d descriptors\n",
		mark, r.localeCount, r.artifacts, r.descriptors)
}

func (r *BuildReport) renderMinimal(duration time.Duration) {
	w := r.output.Writer()
	r.renderCounts(w, r.output.Green("✓ "))

	stepLines := make([]string, 0, len(r.steps))
	allSuccessful := true

	for _, step := range r.steps {
		if !step.Success {
			allSuccessful = false
			stepLines = append(stepLines, "  "+r.output.Red("✗ ")+step.Name)
		}
	}

	if allSuccessful {
		fmt.Fprintf(w, "  "+r.output.Green("✓ ")+"Build complete in %s\n", formatDuration(duration))
	} else {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failed steps:")
		for _, line := range stepLines {
			fmt.Fprintln(w, line)
		}
	}

	r.renderAssets(w)

	if r.outputDir != "" {
		fmt.Fprintf(w, "\n  %s\n", r.output.Gray("Output: "+r.outputDir))
	}
}

func (r *BuildReport) renderVerbose(duration time.Duration) {
	w := r.output.Writer()
	r.renderCounts(w, "")

	fmt.Fprintln(w)
	for _, step := range r.steps {
		status := r.output.Green("✓")
		name := step.Name
		switch {
		case !step.Success:
			status = r.output.Red("✗")
		case step.Skipped:
			status = r.output.Yellow("-")
			if step.Error != "" {
				name += r.output.Gray(" (skipped: " + step.Error + ")")
			}
		}
		fmt.Fprintf(w, "  %s %s\n", status, name)
	}

	if len(r.errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(r.output.ErrWriter(), "  "+r.output.Red("✗ ")+"Errors (%d):\n", len(r.errors))
		r.renderIssues(w, r.errors)
	}

	if len(r.warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  "+r.output.Yellow("⚠ ")+"Warnings (%d):\n", len(r.warnings))
		r.renderIssues(w, r.warnings)
	}

	r.renderAssets(w)

	fmt.Fprintln(w)
	if len(r.errors) > 0 {
		fmt.Fprintf(r.output.ErrWriter(), "  %s\n", r.output.Red(fmt.Sprintf("Build failed after %s", formatDuration(duration))))
	} else {
		fmt.Fprintf(w, "  "+r.output.Green("✓ ")+"Build complete in %s\n", formatDuration(duration))
	}

	if r.outputDir != "" {
		fmt.Fprintf(w, "\n  %s\n", r.output.Gray("Output: "+r.outputDir))
	}
}

func (r *BuildReport) renderIssues(w io.Writer, issues []BuildIssue) {
	for _, issue := range issues {
		fmt.Fprintf(w, "  %s %s\n", r.output.Red("✗"), issue.Subject)
		fmt.Fprintf(w, "    %s\n", issue.Message)

		for _, detail := range deduplicateStrings(issue.Details) {
			fmt.Fprintf(w, "      • %s\n", detail)
		}
	}
}

func (r *BuildReport) renderAssets(w io.Writer) {
	if len(r.assets) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  File sizes:")
	for _, asset := range r.assets {
		fmt.Fprintf(w, "    %10s  %s\n", formatSize(asset.Size), asset.Name)
	}
}

func (r *BuildReport) HasFailures() bool {
	return r.hasFailures
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.1fs", float64(d)/float64(time.Second))
}

func formatSize(size int) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// deduplicateStrings collapses repeated details, keeping first-seen order.
func deduplicateStrings(items []string) []string {
	if len(items) <= 1 {
		return items
	}

	counts := make(map[string]int)
	order := make([]string, 0, len(items))
	for _, item := range items {
		if counts[item] == 0 {
			order = append(order, item)
		}
		counts[item]++
	}

	result := make([]string, 0, len(order))
	for _, item := range order {
		if counts[item] > 1 {
			result = append(result, fmt.Sprintf("%s (%d occurrences)", item, counts[item]))
		} else {
			result = append(result, item)
		}
	}

	return result
}
