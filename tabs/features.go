package tabs

import (
	"context"
	"strings"
	"sync"

	"github.com/richinex/studio/api"
	"github.com/richinex/studio/latex"
	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/llm"
	"github.com/richinex/studio/model"
	"github.com/richinex/studio/storage"
)

const (
	SpeechStatus        = "Generating speech audio..."
	SummarySpeechStatus = "Generating conversational summary and speech..."
	// PDFFailed is shown when compilation fails without a message.
	PDFFailed = "PDF generation failed"
)

// TTSStatus returns the loading message for a speech mode.
func TTSStatus(mode api.TTSMode) string {
	if mode == api.TTSSummary {
		return SummarySpeechStatus
	}
	return SpeechStatus
}

// FeaturesTab generates derivative artifacts from a transcript: speech
// audio and a LaTeX/PDF summary.
type FeaturesTab struct {
	deps Deps

	list      lifecycle.Action
	tts       lifecycle.Action
	pdf       *latex.Generator
	alert     alert
	downloads *Downloader

	mu          sync.Mutex
	transcripts []model.FileInfo
	provider    llm.ProviderType
	model       string
	summaryMode api.SummaryMode
	ttsMode     api.TTSMode
	speech      *model.TTSResult
}

// NewFeaturesTab creates the features view. An empty model selects the
// provider's default.
func NewFeaturesTab(d Deps, provider llm.ProviderType, modelName string) *FeaturesTab {
	d = d.withDefaults()
	if modelName == "" {
		modelName = provider.DefaultModel()
	}
	f := &FeaturesTab{
		deps:        d,
		pdf:         latex.NewGenerator(d.Backend, d.Notify),
		provider:    provider,
		model:       modelName,
		summaryMode: api.SummaryConcise,
		ttsMode:     api.TTSTranscript,
	}
	f.downloads = newDownloader(d, &f.alert)
	return f
}

// LoadTranscripts fetches the transcripts a feature can run on.
func (f *FeaturesTab) LoadTranscripts(ctx context.Context) ([]model.FileInfo, error) {
	files, err := run(ctx, &f.list, f.deps.Notify, &f.alert, TranscriptListStatus, "Failed to load transcripts", f.deps.Backend.ListTranscripts)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.transcripts = files
	f.mu.Unlock()
	return files, nil
}

// Transcripts returns the last loaded listing.
func (f *FeaturesTab) Transcripts() []model.FileInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.FileInfo(nil), f.transcripts...)
}

// SetProvider switches the summary provider and resets the model to the
// provider's default.
func (f *FeaturesTab) SetProvider(name string) error {
	p, err := llm.ParseProviderType(name)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.provider = p
	f.model = p.DefaultModel()
	f.mu.Unlock()
	return nil
}

// SetModel overrides the summary model.
func (f *FeaturesTab) SetModel(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name = strings.TrimSpace(name); name != "" {
		f.model = name
	}
}

// SetSummaryMode selects the depth of the summary.
func (f *FeaturesTab) SetSummaryMode(m api.SummaryMode) {
	f.mu.Lock()
	f.summaryMode = m
	f.mu.Unlock()
}

// SetTTSMode selects what the speech generator reads.
func (f *FeaturesTab) SetTTSMode(m api.TTSMode) {
	f.mu.Lock()
	f.ttsMode = m
	f.mu.Unlock()
}

// Provider returns the summary provider and model.
func (f *FeaturesTab) Provider() (llm.ProviderType, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.provider, f.model
}

// GenerateSpeech produces audio from a transcript. A failure keeps the
// previous result.
func (f *FeaturesTab) GenerateSpeech(ctx context.Context, transcriptPath string) (model.TTSResult, error) {
	if strings.TrimSpace(transcriptPath) == "" {
		return model.TTSResult{}, reject(&f.tts, &f.alert, "Please select a transcript")
	}
	f.mu.Lock()
	mode := f.ttsMode
	f.mu.Unlock()

	res, err := run(ctx, &f.tts, f.deps.Notify, &f.alert, TTSStatus(mode), "TTS generation failed", func(ctx context.Context) (model.TTSResult, error) {
		return f.deps.Backend.GenerateTTS(ctx, transcriptPath, mode)
	})
	if err != nil {
		return model.TTSResult{}, err
	}
	f.mu.Lock()
	f.speech = &res
	f.mu.Unlock()
	f.deps.History.Record(ctx, storage.ArtifactAudio, res.Artifact())
	return res, nil
}

// Speech returns the last generated audio.
func (f *FeaturesTab) Speech() (model.TTSResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.speech == nil {
		return model.TTSResult{}, false
	}
	return *f.speech, true
}

// GenerateSummary streams a LaTeX summary of a transcript, publishing the
// draft to onDraft, then compiles it. The outcome is returned together with
// its error; a Partial outcome still carries the LaTeX source.
func (f *FeaturesTab) GenerateSummary(ctx context.Context, transcriptPath string, onDraft func(string)) (latex.Outcome, error) {
	if strings.TrimSpace(transcriptPath) == "" {
		return latex.Outcome{}, reject(f.pdf, &f.alert, "Please select a transcript")
	}
	f.mu.Lock()
	req := api.LatexRequest{
		TranscriptPath: transcriptPath,
		ModelName:      f.model,
		SummaryMode:    f.summaryMode,
		Provider:       f.provider.String(),
	}
	f.mu.Unlock()

	out, err := f.pdf.Run(ctx, req, onDraft)
	if err != nil {
		return out, err
	}
	switch out.Status {
	case latex.Compiled:
		f.alert.set("")
		f.deps.History.Record(ctx, storage.ArtifactPDF, out.PDF())
		f.deps.History.Record(ctx, storage.ArtifactLatex, out.Source())
	case latex.Partial:
		f.alert.set(api.Message(out.Err, PDFFailed))
		f.deps.History.Record(ctx, storage.ArtifactLatex, out.Source())
	default:
		f.alert.set(api.Message(out.Err, PDFFailed))
	}
	return out, out.Err
}

// Draft returns the LaTeX streamed so far.
func (f *FeaturesTab) Draft() string {
	return f.pdf.Draft()
}

// Summary returns the last summary outcome.
func (f *FeaturesTab) Summary() (latex.Outcome, bool) {
	return f.pdf.Outcome()
}

// SummaryState returns the lifecycle state of the summary pipeline.
func (f *FeaturesTab) SummaryState() lifecycle.State {
	return f.pdf.State()
}

// Download saves a produced artifact locally.
func (f *FeaturesTab) Download(ctx context.Context, a model.Artifact) (string, error) {
	return f.downloads.Save(ctx, a)
}

// Error returns the message of the last failure, or "".
func (f *FeaturesTab) Error() string { return f.alert.get() }

// Close aborts every request in flight.
func (f *FeaturesTab) Close() {
	f.list.Cancel()
	f.tts.Cancel()
	f.pdf.Cancel()
	f.downloads.Close()
}

