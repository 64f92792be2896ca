package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/spotbak/internal/shared"
)

const successPage = `<!DOCTYPE html>
<html>
<head><title>spotbak</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh">
<h1 style="color: #1DB954">Authorized</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>
`

// ExchangeFunc trades an authorization code for a token.
type ExchangeFunc func(ctx context.Context, code string) (*oauth2.Token, error)

// Result is the outcome of one authorization redirect.
type Result struct {
	Token *oauth2.Token
	Err   error
}

// CallbackHandler accepts a single authorization redirect on path, checks state and exchanges the code.
type CallbackHandler struct {
	path     string
	state    string
	exchange ExchangeFunc
	results  chan Result
	once     sync.Once
	mu       sync.Mutex
	handled  bool
}

func NewCallbackHandler(path, state string, exchange ExchangeFunc) *CallbackHandler {
	return &CallbackHandler{
		path:     path,
		state:    state,
		exchange: exchange,
		results:  make(chan Result, 1),
	}
}

func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.send(Result{Err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.send(Result{Err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, query.Get("error"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.exchange(r.Context(), code)
	if err != nil {
		h.send(Result{Err: err})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.send(Result{Token: token})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, successPage)
}

func (h *CallbackHandler) send(result Result) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result receives exactly one value, then is closed.
func (h *CallbackHandler) Result() <-chan Result {
	return h.results
}

// Callback is a running loopback server waiting for the redirect.
type Callback struct {
	srv     *http.Server
	ln      net.Listener
	handler *CallbackHandler
	logger  *log.Logger
}

// Listen binds the host and path of redirectURI and starts serving.
func Listen(redirectURI, state string, exchange ExchangeFunc, logger *log.Logger) (*Callback, error) {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid redirect uri %q", shared.ErrInvalidConfig, redirectURI)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", u.Host, err)
	}

	handler := NewCallbackHandler(path, state, exchange)
	router := NewRouter()
	router.Use(Logging(logger))
	router.Handle(handler)

	c := &Callback{
		srv:     &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		ln:      ln,
		handler: handler,
		logger:  logger,
	}

	go func() {
		if err := c.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server stopped", "error", err)
		}
	}()
	logger.Debug("waiting for authorization redirect", "addr", ln.Addr(), "path", path)
	return c, nil
}

// Addr is the bound address, useful when the redirect uri names port 0.
func (c *Callback) Addr() string {
	return c.ln.Addr().String()
}

// Wait blocks until the redirect is handled or ctx ends, then shuts the server down.
func (c *Callback) Wait(ctx context.Context) (*oauth2.Token, error) {
	defer c.close()

	select {
	case result := <-c.handler.Result():
		return result.Token, result.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: no redirect received: %v", shared.ErrAuthFailed, ctx.Err())
	}
}

func (c *Callback) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.srv.Shutdown(ctx); err != nil {
		c.logger.Warn("failed to shut down callback server", "error", err)
	}
}
