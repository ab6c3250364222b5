package web

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/ledger"
	"github.com/metaverf/metaverf-ledger/pkg/rate"
	"github.com/metaverf/metaverf-ledger/pkg/solana"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

const (
	v1PathPrefix            = "/v1"
	v1SubmitTransactionPath = v1PathPrefix + "/submitTransaction"
	v1GetAccountPath        = v1PathPrefix + "/getAccount"
	v1GetProtocolPath       = v1PathPrefix + "/getProtocol"
	v1GetCollegePath        = v1PathPrefix + "/getCollege"

	contentTypeHeaderName      = "content-type"
	jsonContentTypeHeaderValue = "application/json"
	requestIdHeaderName        = "x-request-id"
	forwardedForHeaderName     = "x-forwarded-for"
)

var (
	errRateLimited = errors.New("too many requests")
	errInternal    = errors.New("internal server error")
)

// Ledger is the ledger access the web server needs
type Ledger interface {
	Submit(ctx context.Context, txn solana.Transaction) (*ledger.Result, error)
	GetAccount(ctx context.Context, address ed25519.PublicKey) (*bank.Account, error)
	GetProtocolState(ctx context.Context) (*metaverf.ProtocolAccount, error)
	GetCollege(ctx context.Context, collegeId uint16) (*metaverf.CollegeAccount, error)
}

type Server struct {
	log           *logrus.Entry
	conf          *conf
	ledger        Ledger
	submitLimiter rate.Limiter
}

func NewServer(l Ledger, configProvider ConfigProvider) *Server {
	conf := configProvider()

	return &Server{
		log:           logrus.StandardLogger().WithField("type", "metaverf/server/web"),
		conf:          conf,
		ledger:        l,
		submitLimiter: rate.NewLocalRateLimiter(xrate.Limit(conf.submitRateLimit.Get(context.Background()))),
	}
}

func (s *Server) submitTransactionHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.newRequestLog(w, r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodPost {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("http post expected"))
			}

			ip := clientIP(r)
			allowed, err := s.submitLimiter.Allow(ip)
			if err != nil {
				log.WithError(err).Warn("failure checking rate limit")
			} else if !allowed {
				log.WithField("ip", ip).Debug("rate limited")
				return http.StatusTooManyRequests, NewGenericApiFailureResponseBody(errRateLimited)
			}

			txn, err := s.newTransactionFromHttpContext(r)
			if err != nil {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			result, err := s.ledger.Submit(ctx, *txn)
			if err != nil {
				log.WithError(err).Warn("failure submitting transaction")
				return http.StatusInternalServerError, NewGenericApiFailureResponseBody(errInternal)
			}

			log = log.WithField("signature", result.Signature)

			if !result.Succeeded() {
				respBody := NewGenericApiFailureResponseBody(result.Err)
				respBody["signature"] = result.Signature
				respBody["slot"] = result.Slot
				respBody["transaction_error"] = result.Err.JSONString()
				if programErr, ok := metaverf.GetError(result.Err); ok {
					respBody["program_error"] = programErr.Error()
				}
				return http.StatusUnprocessableEntity, respBody
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["signature"] = result.Signature
			respBody["slot"] = result.Slot
			return http.StatusOK, respBody
		}()

		s.writeResponse(log, w, statusCode, body)
	}
}

func (s *Server) getAccountHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.newRequestLog(w, r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodGet {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("http get expected"))
			}

			addressQueryParam := r.URL.Query()["address"]
			if len(addressQueryParam) < 1 {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("address query parameter missing"))
			}

			address, err := base58.Decode(addressQueryParam[0])
			if err != nil || len(address) != ed25519.PublicKeySize {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("address is not a public key"))
			}
			log = log.WithField("address", addressQueryParam[0])

			acct, err := s.ledger.GetAccount(ctx, address)
			if err != nil {
				log.WithError(err).Warn("failure getting account")
				return http.StatusInternalServerError, NewGenericApiFailureResponseBody(errInternal)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["account"] = newAccountView(acct)
			return http.StatusOK, respBody
		}()

		s.writeResponse(log, w, statusCode, body)
	}
}

func (s *Server) getProtocolHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.newRequestLog(w, r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodGet {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("http get expected"))
			}

			protocol, err := s.ledger.GetProtocolState(ctx)
			if err == metaverf.ErrAccountNotInitialized {
				return http.StatusNotFound, NewGenericApiFailureResponseBody(err)
			} else if err != nil {
				log.WithError(err).Warn("failure getting protocol state")
				return http.StatusInternalServerError, NewGenericApiFailureResponseBody(errInternal)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["protocol"] = newProtocolView(protocol)
			return http.StatusOK, respBody
		}()

		s.writeResponse(log, w, statusCode, body)
	}
}

func (s *Server) getCollegeHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.newRequestLog(w, r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodGet {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("http get expected"))
			}

			idQueryParam := r.URL.Query()["id"]
			if len(idQueryParam) < 1 {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("id query parameter missing"))
			}

			collegeId, err := strconv.ParseUint(idQueryParam[0], 10, 16)
			if err != nil {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("id is not a college id"))
			}
			log = log.WithField("college_id", collegeId)

			college, err := s.ledger.GetCollege(ctx, uint16(collegeId))
			if err == metaverf.ErrAccountNotInitialized {
				return http.StatusNotFound, NewGenericApiFailureResponseBody(err)
			} else if err != nil {
				log.WithError(err).Warn("failure getting college")
				return http.StatusInternalServerError, NewGenericApiFailureResponseBody(errInternal)
			}

			respBody := NewGenericApiSuccessResponseBody()
			respBody["college"] = newCollegeView(college)
			return http.StatusOK, respBody
		}()

		s.writeResponse(log, w, statusCode, body)
	}
}

func (s *Server) GetHandlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		v1SubmitTransactionPath: s.submitTransactionHandler(v1SubmitTransactionPath),
		v1GetAccountPath:        s.getAccountHandler(v1GetAccountPath),
		v1GetProtocolPath:       s.getProtocolHandler(v1GetProtocolPath),
		v1GetCollegePath:        s.getCollegeHandler(v1GetCollegePath),
	}
}

func (s *Server) newTransactionFromHttpContext(r *http.Request) (*solana.Transaction, error) {
	httpRequestBody := struct {
		Transaction string `json:"transaction"`
	}{}

	maxBodySize := int64(s.conf.maxRequestBodySize.Get(r.Context()))
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxBodySize {
		return nil, errors.New("request body too large")
	}

	if err := json.Unmarshal(body, &httpRequestBody); err != nil {
		return nil, errors.New("request body is not valid json")
	}

	raw, err := base64.StdEncoding.DecodeString(httpRequestBody.Transaction)
	if err != nil || len(raw) == 0 {
		return nil, errors.New("transaction is not valid base64")
	}

	var txn solana.Transaction
	if err := txn.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "transaction is malformed")
	}
	return &txn, nil
}

func (s *Server) newRequestLog(w http.ResponseWriter, r *http.Request, path string) *logrus.Entry {
	requestId := uuid.New().String()
	w.Header().Set(requestIdHeaderName, requestId)

	return s.log.WithFields(logrus.Fields{
		"path":       path,
		"request_id": requestId,
	})
}

func (s *Server) writeResponse(log *logrus.Entry, w http.ResponseWriter, statusCode int, body GenericApiResponseBody) {
	w.Header().Set(contentTypeHeaderName, jsonContentTypeHeaderValue)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(body.ToString())); err != nil {
		log.WithError(err).Info("failed to write body")
	}
}
