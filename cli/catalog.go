package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/richinex/studio/internal/fakeapi"
	"github.com/richinex/studio/llm"
	"github.com/richinex/studio/tools"
)

// ListTools lists the tools the backend assistant can invoke.
func ListTools(w io.Writer, verbose bool) {
	registry := tools.Catalog()

	fmt.Fprintln(w, "Assistant tools:")
	fmt.Fprintln(w)

	for _, meta := range registry.List() {
		fmt.Fprintf(w, "  %s\n", meta.Name)
		fmt.Fprintf(w, "    %s\n", meta.Description)

		if verbose && len(meta.Parameters) > 0 {
			fmt.Fprintln(w, "    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Fprintf(w, "      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Fprintln(w)
	}
}

// ListModels prints the models a provider serves. An empty provider lists
// every provider; unreachable providers are reported and skipped.
func ListModels(ctx context.Context, w io.Writer, provider string) error {
	providers := llm.Providers()
	if provider != "" {
		p, err := llm.ParseProviderType(provider)
		if err != nil {
			return err
		}
		providers = []llm.ProviderType{p}
	}

	t := newTheme()
	var firstErr error
	for _, p := range providers {
		ids, err := llm.ListModels(ctx, p)
		fmt.Fprintln(w, t.title.Render(fmt.Sprintf("%s (default %s)", p, p.DefaultModel())))
		if err != nil {
			fmt.Fprintf(w, "  %s\n\n", t.alert.Render(err.Error()))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, id := range ids {
			marker := " "
			if id == p.DefaultModel() {
				marker = "*"
			}
			fmt.Fprintf(w, " %s %s\n", marker, id)
		}
		fmt.Fprintln(w)
	}
	if provider != "" {
		return firstErr
	}
	return nil
}

// ServeMock serves the in-memory backend on addr until ctx is done.
// ready, if non-nil, receives the bound address.
func ServeMock(ctx context.Context, addr string, logger *slog.Logger, ready func(string)) error {
	if logger == nil {
		logger = slog.Default()
	}
	fake := fakeapi.New(fakeapi.WithRequestLog(), fakeapi.WithLogger(logger))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           fake.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("mock backend listening", "addr", ln.Addr().String())
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down mock backend: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
