// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/votematch/auth"
	"github.com/danielhkuo/votematch/middleware"
	"github.com/danielhkuo/votematch/models"
)

// Error codes returned in the "code" field
const (
	CodeCategoryNotFound        = "category_not_found"
	CodeOracleUnavailable       = "oracle_unavailable"
	CodeMalformedOracleResponse = "malformed_oracle_response"
	CodeInconsistentVoteState   = "inconsistent_vote_state"
	CodeAlreadyVoted            = "already_voted"
	CodeVoteNotFound            = "vote_not_found"
	CodeNotFound                = "not_found"
	CodeValidation              = "validation_failed"
)

// Access key headers
const (
	HeaderAdminKey      = "X-Admin-Key"
	HeaderPoliticianKey = "X-Politician-Key"
	HeaderVoterKey      = "X-Voter-Key"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation messages
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errorStatus maps a domain error to its HTTP status and code.
// Unknown errors map to 500 with no code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrCategoryNotFound):
		return http.StatusBadRequest, CodeCategoryNotFound
	case errors.Is(err, models.ErrOracleUnavailable):
		return http.StatusServiceUnavailable, CodeOracleUnavailable
	case errors.Is(err, models.ErrMalformedOracleResponse):
		return http.StatusBadGateway, CodeMalformedOracleResponse
	case errors.Is(err, models.ErrInconsistentVoteState):
		return http.StatusConflict, CodeInconsistentVoteState
	case errors.Is(err, models.ErrAlreadyVoted):
		return http.StatusConflict, CodeAlreadyVoted
	case errors.Is(err, models.ErrVoteNotFound):
		return http.StatusNotFound, CodeVoteNotFound
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, models.ErrInvalidVector):
		return http.StatusBadRequest, CodeValidation
	default:
		return http.StatusInternalServerError, ""
	}
}

// writeError writes err as a JSON error. Internal errors are logged and
// reported with message only.
func writeError(w http.ResponseWriter, err error, message string) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error(message, "error", err)
		middleware.ErrorResponse(w, status, message)
		return
	}
	middleware.ErrorCodeResponse(w, status, code, err.Error())
}

// writeValidationError reports struct validation failures as 400.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	middleware.ErrorCodeResponse(w, http.StatusBadRequest, CodeValidation, strings.Join(msgs, "; "))
}

// checkKey validates an access key header for role and subjectID and writes
// 401 on failure.
func checkKey(w http.ResponseWriter, r *http.Request, header, role, subjectID, salt string) bool {
	key := r.Header.Get(header)
	if key == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, header+" header required")
		return false
	}
	if err := auth.ValidateKey(role, subjectID, key, salt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid "+header)
		return false
	}
	return true
}

func checkAdminKey(w http.ResponseWriter, r *http.Request, expected string) bool {
	key := r.Header.Get(HeaderAdminKey)
	if key == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, HeaderAdminKey+" header required")
		return false
	}
	if err := auth.ValidateAdminKey(key, expected); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}
