package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ProgressFunc receives upload progress as a whole percentage (0-100).
type ProgressFunc func(percent int)

// progressReader reports how much of a known-size body has been read.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.progress != nil && p.total > 0 && n > 0 {
		pct := int((p.read*100 + p.total/2) / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct != p.last {
			p.last = pct
			p.progress(pct)
		}
	}
	return n, err
}

// UploadMedia uploads a file as multipart form field "file" and returns the
// server path. size is used for progress reporting; pass 0 when unknown.
func (c *Client) UploadMedia(ctx context.Context, filename string, r io.Reader, size int64, progress ProgressFunc) (string, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := &progressReader{r: r, total: size, progress: progress}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/media/upload", pr)
	if err != nil {
		pr.CloseWithError(err)
		return "", transport(0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		pr.CloseWithError(err)
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transport(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}
	var out struct {
		Path string `json:"path"`
	}
	if err := decodeEnvelope(resp.StatusCode, data, &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

// Download fetches the file at path and writes its bytes to w.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodPost, "/download", map[string]string{"path": path})
	if err != nil {
		return 0, transport(0, err)
	}
	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, failedStatus(resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, transport(resp.StatusCode, fmt.Errorf("download interrupted: %w", err))
	}
	return n, nil
}

// failedStatus maps a non-2xx response to a business error when the body is
// a JSON envelope, and to a transport error otherwise.
func failedStatus(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return transport(resp.StatusCode, err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return transport(resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	return business(resp.StatusCode, env.Error)
}

// StreamLatex opens the chunked LaTeX stream. A non-2xx status is reported
// before any body is read. The caller must Close the returned stream.
func (c *Client) StreamLatex(ctx context.Context, lr LatexRequest) (*LatexStream, error) {
	ctx, cancel := c.withDeadline(ctx)

	req, err := c.newRequest(ctx, http.MethodPost, "/pdf/stream_latex", lr)
	if err != nil {
		cancel()
		return nil, transport(0, err)
	}
	resp, err := c.send(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		return nil, failedStatus(resp)
	}
	s := NewLatexStream(resp.Body)
	s.cancel = cancel
	return s, nil
}
