package api

import (
	"context"
	"encoding/json"
	"fmt"

	jsonutil "github.com/richinex/studio/internal/json"
	"github.com/richinex/studio/model"
)

// TTSMode selects what the speech generator reads.
type TTSMode string

const (
	TTSTranscript TTSMode = "transcript"
	TTSSummary    TTSMode = "summary"
)

// SummaryMode selects the depth of the LaTeX summary.
type SummaryMode string

const (
	SummaryConcise  SummaryMode = "concise"
	SummaryDetailed SummaryMode = "detailed"
)

// LatexRequest is the body of the streaming LaTeX call.
type LatexRequest struct {
	TranscriptPath string      `json:"transcript_path"`
	ModelName      string      `json:"model_name"`
	SummaryMode    SummaryMode `json:"summary_mode"`
	Provider       string      `json:"provider"`
}

// PDFRequest is the body of the compile call. LatexCode carries the
// already-streamed draft.
type PDFRequest struct {
	LatexRequest
	LatexCode string `json:"latex_code"`
}

// ChatMessage is the wire form of a transcript entry.
type ChatMessage struct {
	Role    model.Role `json:"role"`
	Content string     `json:"content"`
}

// ChatRequest is the body of the chat call. The whole transcript is resent
// on every turn.
type ChatRequest struct {
	Messages  []ChatMessage `json:"messages"`
	ModelName string        `json:"model_name"`
	Provider  string        `json:"provider"`
}

// ChatReply is the payload of a successful chat call.
type ChatReply struct {
	Message     string             `json:"message"`
	ToolResults []model.ToolResult `json:"tool_results,omitempty"`
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	delete(out, "success")
	return out, nil
}

// ListMedia lists previously uploaded media files.
func (c *Client) ListMedia(ctx context.Context) ([]model.FileInfo, error) {
	var out struct {
		Files []model.FileInfo `json:"files"`
	}
	if err := c.get(ctx, "/media/list", &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// DownloadYouTube asks the backend to fetch a YouTube video and returns the
// server path of the downloaded media.
func (c *Client) DownloadYouTube(ctx context.Context, url string) (string, error) {
	var out struct {
		Path string `json:"path"`
	}
	if err := c.post(ctx, "/media/youtube", map[string]string{"url": url}, &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

// Transcribe transcribes (or extracts text from) the media at path.
func (c *Client) Transcribe(ctx context.Context, path string) (model.Transcription, error) {
	var out model.Transcription
	if err := c.post(ctx, "/transcribe", map[string]string{"path": path}, &out); err != nil {
		return model.Transcription{}, err
	}
	return out, nil
}

// ListTranscripts lists stored transcripts.
func (c *Client) ListTranscripts(ctx context.Context) ([]model.FileInfo, error) {
	var out struct {
		Transcripts []model.FileInfo `json:"transcripts"`
	}
	if err := c.get(ctx, "/transcripts/list", &out); err != nil {
		return nil, err
	}
	return out.Transcripts, nil
}

// TranscriptContent returns the text of the transcript at path.
func (c *Client) TranscriptContent(ctx context.Context, path string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	if err := c.post(ctx, "/transcripts/content", map[string]string{"path": path}, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// GenerateTTS synthesizes speech for a transcript.
func (c *Client) GenerateTTS(ctx context.Context, transcriptPath string, mode TTSMode) (model.TTSResult, error) {
	body := map[string]string{
		"transcript_path": transcriptPath,
		"tts_mode":        string(mode),
	}
	var out model.TTSResult
	if err := c.post(ctx, "/tts/generate", body, &out); err != nil {
		return model.TTSResult{}, err
	}
	return out, nil
}

// GeneratePDF compiles the given LaTeX draft. On a business failure the
// returned result still carries the tex fields when the server kept the
// uncompiled source.
func (c *Client) GeneratePDF(ctx context.Context, req PDFRequest) (model.PDFResult, error) {
	var out model.PDFResult
	err := c.post(ctx, "/pdf/generate", req, &out)
	return out, err
}

// ListLatex lists stored LaTeX summaries.
func (c *Client) ListLatex(ctx context.Context) ([]model.FileInfo, error) {
	var out struct {
		Files []model.FileInfo `json:"files"`
	}
	if err := c.get(ctx, "/latex/list", &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// GenerateQuiz generates numQuestions questions from the LaTeX summary at latexPath.
func (c *Client) GenerateQuiz(ctx context.Context, latexPath, modelName string, numQuestions int) (model.Quiz, error) {
	body := map[string]any{
		"latex_path":    latexPath,
		"model_name":    modelName,
		"num_questions": numQuestions,
	}
	var out struct {
		QuizData json.RawMessage `json:"quiz_data"`
	}
	if err := c.post(ctx, "/quiz/generate", body, &out); err != nil {
		return model.Quiz{}, err
	}
	quiz, err := decodeQuiz(out.QuizData)
	if err != nil {
		return model.Quiz{}, transport(0, err)
	}
	return quiz, nil
}

// decodeQuiz accepts quiz_data either as an object or as the raw model text
// the backend forwards when it could not parse the answer itself.
func decodeQuiz(raw json.RawMessage) (model.Quiz, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return model.Quiz{}, fmt.Errorf("response has no quiz_data")
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return jsonutil.Decode[model.Quiz](text)
	}
	var quiz model.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return model.Quiz{}, fmt.Errorf("invalid quiz_data: %w", err)
	}
	return quiz, nil
}

// Chat sends the transcript and returns the assistant's single reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	var out ChatReply
	if err := c.post(ctx, "/chat", req, &out); err != nil {
		return ChatReply{}, err
	}
	return out, nil
}

// ChatMessages converts transcript entries into their wire form.
func ChatMessages(entries []model.ChatEntry) []ChatMessage {
	out := make([]ChatMessage, len(entries))
	for i, e := range entries {
		out[i] = ChatMessage{Role: e.Role, Content: e.Content}
	}
	return out
}
