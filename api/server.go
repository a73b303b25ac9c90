// Package api exposes the commitment register and the knowledge verifier
// over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	anondata "github.com/iden3/go-anonymous-data"
	"github.com/iden3/go-anonymous-data/commitment"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/proofs"
	"github.com/iden3/go-anonymous-data/store"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	maxBodySize     = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// VerifierInfo describes the verifying key a server checks proofs against.
// *verifier.Verifier implements it.
type VerifierInfo interface {
	anondata.ProofVerifier
	KeyID() common.Hash
	Engine() string
	NPublic() int
}

// Server routes HTTP requests to an AnonymousData orchestrator.
type Server struct {
	router   *mux.Router
	anon     *anondata.AnonymousData
	verifier VerifierInfo
	logger   zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger, zerolog.Nop by default.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a server over a and the verifier a was built with.
func NewServer(a *anondata.AnonymousData, v VerifierInfo, opts ...Option) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		anon:     a,
		verifier: v,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/hash", s.getHash).Methods(http.MethodGet)
	v1.HandleFunc("/hash", s.setHash).Methods(http.MethodPost)
	v1.HandleFunc("/verifier", s.getVerifier).Methods(http.MethodGet)
	v1.HandleFunc("/verify", s.verify).Methods(http.MethodPost)
	v1.HandleFunc("/commitments", s.generateCommitment).Methods(http.MethodPost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	}
}

type hashBody struct {
	Hash string `json:"hash"`
}

type verifierResponse struct {
	Address string `json:"address"`
	KeyID   string `json:"key_id"`
	Engine  string `json:"engine"`
	NPublic int    `json:"n_public"`
}

type verifyResponse struct {
	Valid            bool   `json:"valid"`
	Reason           string `json:"reason,omitempty"`
	PublicCommitment string `json:"public_commitment"`
	StoredCommitment string `json:"stored_commitment"`
}

type commitmentRequest struct {
	Data   string `json:"data"`
	Hasher string `json:"hasher,omitempty"`
}

type commitmentResponse struct {
	Input      string `json:"input"`
	Commitment string `json:"commitment"`
	Hasher     string `json:"hasher"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) getHash(w http.ResponseWriter, r *http.Request) {
	h, err := s.anon.StoredHash(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hashBody{Hash: h.String()})
}

func (s *Server) setHash(w http.ResponseWriter, r *http.Request) {
	var body hashBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := field.ParseElement(body.Hash)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errBadRequest, err.Error()))
		return
	}

	ctx := r.Context()
	if caller, ok := bearerToken(r); ok {
		ctx = store.ContextWithCaller(ctx, caller)
	}
	if err := s.anon.SetHash(ctx, c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hashBody{Hash: c.String()})
}

func (s *Server) getVerifier(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, verifierResponse{
		Address: s.verifier.Address().Hex(),
		KeyID:   s.verifier.KeyID().Hex(),
		Engine:  s.verifier.Engine(),
		NPublic: s.verifier.NPublic(),
	})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	dryRun, err := queryBool(r, "dry_run")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body types.ZKProof
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, errors.Wrap(types.ErrMalformedProof, err.Error()))
		return
	}
	if err := proofs.CheckProofData(body.Proof); err != nil {
		s.writeError(w, r, err)
		return
	}
	signals, err := proofs.PublicSignals(body.PubSignals)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.anon.VerifyZKProof(r.Context(), body.Proof, signals, dryRun)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		Valid:            res.Valid,
		Reason:           res.Reason,
		PublicCommitment: res.PublicCommitment.String(),
		StoredCommitment: res.StoredCommitment.String(),
	})
}

func (s *Server) generateCommitment(w http.ResponseWriter, r *http.Request) {
	var body commitmentRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := commitment.HasherByName(body.Hasher)
	if err != nil {
		s.writeError(w, r, errors.Wrap(commitment.ErrInvalidInput, err.Error()))
		return
	}
	d, err := commitment.NewGenerator(commitment.WithHasher(h)).Derive([]byte(body.Data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, commitmentResponse{
		Input:      d.Input.String(),
		Commitment: d.Commitment.String(),
		Hasher:     h.Name(),
	})
}

var errBadRequest = errors.New("bad request")

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}
	return nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(errBadRequest, "%s: %s", name, err)
	}
	return b, nil
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, anondata.ErrMalformedProof),
		errors.Is(err, anondata.ErrInvalidInput),
		errors.Is(err, anondata.ErrNotInField):
		return http.StatusBadRequest
	case errors.Is(err, anondata.ErrUnauthorizedPublish):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		msg = http.StatusText(code)
	}
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
