// cmd/solvex-server/main.go — HTTP front end for the solvex pipeline
//
// Exposes the equation solver as a small JSON API.
//
// Usage:
//   go run cmd/solvex-server/main.go -port 8080
//
// Solve endpoint:  POST /solve
// Health endpoint: GET  /health
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/muazify/solvex"
	"github.com/muazify/solvex/numeric"
	"github.com/muazify/solvex/parser"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type solveRequest struct {
	Equation string   `json:"equation"`
	Guess    *float64 `json:"guess,omitempty"`
}

type solution struct {
	Value  string  `json:"value"`
	Approx float64 `json:"approx"`
	LaTeX  string  `json:"latex"`
}

type solveResponse struct {
	Equation  string          `json:"equation"`
	Residual  string          `json:"residual,omitempty"`
	Method    string          `json:"method"`
	Solutions []solution      `json:"solutions,omitempty"`
	Numeric   *numeric.Result `json:"numeric,omitempty"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	flag.Parse()

	mux := http.NewServeMux()

	// POST /solve — solve one equation for x
	mux.HandleFunc("/solve", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic in /solve: %v\n%s", rec, string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req solveRequest
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, solveResponse{Error: err.Error()})
			return
		}
		// Ensure there's no trailing junk.
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, solveResponse{Error: "invalid JSON: trailing data"})
			return
		}
		if req.Equation == "" {
			writeJSON(w, http.StatusBadRequest, solveResponse{Error: "equation is required"})
			return
		}

		resp, status := handleSolve(req)
		writeJSON(w, status, resp)
	})

	// GET /health — liveness check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("solvex server listening on %s", addr)
	log.Printf("  POST /solve  — solve an equation for x")
	log.Printf("  GET  /health — health check")

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func handleSolve(req solveRequest) (solveResponse, int) {
	resp := solveResponse{Equation: req.Equation}

	residual, err := parser.ParseEquation(req.Equation)
	if err != nil {
		resp.Error = err.Error()
		return resp, http.StatusBadRequest
	}

	set := solvex.SolveSet(residual, "x")
	resp.Residual = set.Residual.String()

	switch set.Kind {
	case solvex.SetFinite:
		resp.Method = "exact"
		for _, v := range set.Values {
			sol := solution{Value: v.String(), LaTeX: solvex.LaTeX(v)}
			if n, ok := v.Eval(); ok {
				sol.Approx = n.Float64()
			}
			resp.Solutions = append(resp.Solutions, sol)
		}
		return resp, http.StatusOK
	case solvex.SetEmpty:
		resp.Method = "none"
		resp.Message = "no real solutions"
		return resp, http.StatusOK
	case solvex.SetAllReals:
		resp.Method = "identity"
		resp.Message = "every real x satisfies the equation"
		return resp, http.StatusOK
	}

	guess := 1.0
	if req.Guess != nil {
		if math.IsNaN(*req.Guess) || math.IsInf(*req.Guess, 0) {
			resp.Error = "guess must be finite"
			return resp, http.StatusBadRequest
		}
		guess = *req.Guess
	}
	res, err := numeric.Solve(set.Residual, "x", guess, numeric.Options{})
	if err != nil {
		resp.Method = "failed"
		resp.Message = err.Error()
		return resp, http.StatusUnprocessableEntity
	}
	resp.Numeric = &res
	if !res.Converged {
		resp.Method = "failed"
		resp.Message = res.Message
		return resp, http.StatusUnprocessableEntity
	}
	resp.Method = "approximate"
	resp.Message = res.Message
	return resp, http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
