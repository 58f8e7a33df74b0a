// Package api exposes the tallying core's operations over HTTP, binding
// tally.Service's eight named operations plus election creation to chi
// routes (spec.md §6; routes defined in api/routes.go). Grounded on the
// teacher's own api.API/APIConfig/chi+cors wiring (api/api.go), generalized
// from the teacher's census/process domain to this core's election/trustee/
// ballot/session domain.
package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/audit"
	"github.com/vocdoni/tallyvault/log"
	"github.com/vocdoni/tallyvault/tally"
	"github.com/vocdoni/tallyvault/types"
)

// Config is the API HTTP server's configuration.
type Config struct {
	Host    string
	Port    int
	Service *tally.Service
}

// API is the tallying core's HTTP transport binding.
type API struct {
	router  *chi.Mux
	service *tally.Service
}

// New creates an API instance bound to conf.Service and starts the HTTP
// server in the background.
func New(conf *Config) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Service == nil {
		return nil, fmt.Errorf("missing tally service instance")
	}
	a := &API{service: conf.Service}
	a.initRouter()
	go func() {
		log.Infow("starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router, exposed for tests.
func (a *API) Router() *chi.Mux {
	return a.router
}

// bufPool is a pool of bytes.Buffer to reduce logger allocations.
var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

func (a *API) initRouter() {
	logHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if log.Level() != log.LogLevelDebug || r.URL.Path == PingEndpoint {
				next.ServeHTTP(w, r)
				return
			}
			buf := bufPool.Get().(*bytes.Buffer)
			buf.Reset()
			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "unable to read request body", http.StatusInternalServerError)
				bufPool.Put(buf)
				return
			}
			buf.Write(bodyBytes)
			log.Debugw("api request",
				"method", r.Method,
				"url", r.URL.String(),
				"body", strings.ReplaceAll(buf.String(), "\"", ""),
			)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bufPool.Put(buf)
			next.ServeHTTP(w, r)
		})
	}

	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	a.router.Use(logHandler)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.registerHandlers()
}

func (a *API) registerHandlers() {
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	a.router.Post(ElectionsEndpoint, a.createElection)
	a.router.Post(TrusteesEndpoint, a.registerTrustee)
	a.router.Post(SharesEndpoint, a.issueKeyShares)
	a.router.Post(BallotsEndpoint, a.submitBallot)
	a.router.Post(TallyEndpoint, a.startTallying)
	a.router.Post(TallyPartialEndpoint, a.partialDecrypt)
	a.router.Post(TallyFinalizeEndpoint, a.finalizeTally)
	a.router.Get(ResultVerifyEndpoint, a.verifyResult)
	a.router.Get(AuditEndpoint, a.auditTrail)
}

// requestAudit builds an audit.Context from the caller-supplied actor plus
// the request's own network-visible fields (SPEC_FULL.md §3: AuditEntry.
// IPAddress/UserAgent, supplemented from original_source/'s AuditLog).
func requestAudit(r *http.Request, actor string) audit.Context {
	return audit.Context{
		Actor:     actor,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func electionIDFromChi(r *http.Request) (uuid.UUID, error) {
	return electionIDFromURL(chi.URLParam(r, ElectionURLParam))
}

type createElectionRequest struct {
	Actor       string   `json:"actor"`
	Candidates  []string `json:"candidates"`
	TotalVoters int      `json:"totalVoters"`
}

func (a *API) createElection(w http.ResponseWriter, r *http.Request) {
	var req createElectionRequest
	if err := decodeJSON(r, &req); err != nil {
		err.(Error).Write(w)
		return
	}
	election, err := a.service.CreateElection(req.Actor, req.Candidates, req.TotalVoters)
	if err != nil {
		errorFromKind(err).Write(w)
		return
	}
	httpWriteJSON(w, election)
}

type registerTrusteeRequest struct {
	Actor string `json:"actor"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a *API) registerTrustee(w http.ResponseWriter, r *http.Request) {
	var req registerTrusteeRequest
	if err := decodeJSON(r, &req); err != nil {
		err.(Error).Write(w)
		return
	}
	result, err := a.service.RegisterTrustee(req.Actor, req.Name, req.Email)
	if err != nil {
		errorFromKind(err).Write(w)
		return
	}
	httpWriteJSON(w, result)
}

type actorRequest struct {
	Actor string `json:"actor"`
}

func (a *API) issueKeyShares(w http.ResponseWriter, r *http.Request) {
	electionID, ferr := electionIDFromChi(r)
	if ferr != nil {
		ferr.(Error).Write(w)
		return
	}
	var req actorRequest
	if err := decodeJSON(r, &req); err != nil {
		err.(Error).Write(w)
		return
	}
	shares, err := a.service.IssueKeyShares(req.Actor, electionID)
	if err != nil {
		errorFromKind(err).Write(w)
		return
	}
	httpWriteJSON(w, shares)
}

type submitBallotRequest struct {
	Actor  string                 `json:"actor"`
	Vector types.CiphertextVector `json:"vector"`
	Proof  types.HexBytes         `json:"proof"`
	Nonce  string                 `json:"nonce"`
}

func (a *API) submitBallot(w http.ResponseWriter, r *http.Request) {
	electionID, ferr := electionIDFromChi(r)
	if ferr != nil {
		ferr.(Error).Write(w)
		return
	}
	var req submitBallotRequest
	if err := decodeJSON(r, &req); err != nil {
		err.(Error).Write(w)
		return
	}
	ctx := tally.RequestContext{ElectionID: electionID, Audit: requestAudit(r, req.Actor)}
	ballotID, err := a.service.SubmitBallot(ctx, req.Vector, req.Proof, req.Nonce)
	if err != nil {
		errorFromKind(err).Write(w)
		return
	}
	httpWriteJSON(w, map[string]uuid.UUID{"ballotId": ballotID})
}

func (a *API) startTallying(w http.ResponseWriter, r *http.Request) {
	electionID, ferr := electionIDFromChi(r)
	if ferr != nil {
		ferr.(Error).Write(w)
		return
	}
	var req actorRequest
	if err := decodeJSON(r, &req); err != nil {
		err.(Error).Write(w)
		return
	}
	ctx := tally.RequestContext{ElectionID: electionID, Audit: requestAudit(r, req.Actor)}
	result, err := a.service.StartTallying(ctx)
	if err != nil {
		errorFromKind(err).Write(w)
		return
	}
	httpWriteJSON(w, result)
}

type partialDecryptRequest struct {
	Actor     string         `json:"actor"`
	TrusteeID uuid.UUID      `json:"trusteeId"`
	Proof     types.HexBytes `json:"proof"`
}

func (a *API) partialDecrypt(w http.ResponseWriter, r *http.Request) {
	electionID, ferr := electionIDFromChi(r)
	if ferr != nil {
		ferr.(Error).Write(w)
		return
	}
	var req partialDecryptRequest
	if err := decodeJSON(r, &req); err != nil {
		err.(Error).Write(w)
		return
	}
	ctx := tally.RequestContext{ElectionID: electionID, Audit: requestAudit(r, req.Actor)}
	result, err := a.service.PartialDecrypt(ctx, req.TrusteeID, req.Proof)
	if err != nil {
		errorFromKind(err).Write(w)
		return
	}
	httpWriteJSON(w, result)
}

func (a *API) finalizeTally(w http.ResponseWriter, r *http.Request) {
	electionID, ferr := electionIDFromChi(r)
	if ferr != nil {
		ferr.(Error).Write(w)
		return
	}
	var req actorRequest
	if err := decodeJSON(r, &req); err != nil {
		err.(Error).Write(w)
		return
	}
	ctx := tally.RequestContext{ElectionID: electionID, Audit: requestAudit(r, req.Actor)}
	result, err := a.service.FinalizeTally(ctx)
	if err != nil {
		errorFromKind(err).Write(w)
		return
	}
	httpWriteJSON(w, result)
}

func (a *API) verifyResult(w http.ResponseWriter, r *http.Request) {
	electionID, ferr := electionIDFromChi(r)
	if ferr != nil {
		ferr.(Error).Write(w)
		return
	}
	ctx := tally.RequestContext{ElectionID: electionID}
	result, err := a.service.VerifyResult(ctx)
	if err != nil {
		errorFromKind(err).Write(w)
		return
	}
	httpWriteJSON(w, result)
}

func (a *API) auditTrail(w http.ResponseWriter, r *http.Request) {
	electionID, ferr := electionIDFromChi(r)
	if ferr != nil {
		ferr.(Error).Write(w)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	ctx := tally.RequestContext{ElectionID: electionID}
	entries, err := a.service.AuditTrail(ctx, limit, offset)
	if err != nil {
		errorFromKind(err).Write(w)
		return
	}
	httpWriteJSON(w, entries)
}
