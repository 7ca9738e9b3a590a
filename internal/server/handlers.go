package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/audio"
	"codeberg.org/snonux/babelcast/internal/languages"
	"codeberg.org/snonux/babelcast/internal/session"
	"codeberg.org/snonux/babelcast/internal/textfile"
)

type translateRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Text   string `json:"text"`
}

type translateResponse struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Model       string `json:"model"`
	Lang        string `json:"lang"`
	Original    string `json:"original"`
	Translation string `json:"translation"`
}

type speechRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handlePairs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, languages.Pairs())
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	s.run(w, r, session.Request{
		Mode:   session.ModeText,
		Source: req.Source,
		Target: req.Target,
		Text:   req.Text,
		Mute:   true,
	})
}

func (s *Server) handleTranslateFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file: "+err.Error())
		return
	}

	s.run(w, r, session.Request{
		Mode:   session.ModeFile,
		Source: r.FormValue("source"),
		Target: r.FormValue("target"),
		File:   &session.Upload{Name: header.Filename, Data: data},
		Mute:   true,
	})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, req session.Request) {
	res, err := s.runner.Run(r.Context(), req)
	switch {
	case errors.Is(err, languages.ErrUnsupportedPair):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, textfile.ErrNotText), errors.Is(err, textfile.ErrInvalidUTF8):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.log.Warn("translation failed",
			zap.String("source", req.Source),
			zap.String("target", req.Target),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{
		Source:      res.Pair.Source,
		Target:      res.Pair.Target,
		Model:       res.Pair.ModelID,
		Lang:        res.Pair.OutputLang,
		Original:    res.Original,
		Translation: res.Translation,
	})
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if s.synth == nil {
		writeError(w, http.StatusServiceUnavailable, "speech synthesis is not configured")
		return
	}

	var req speechRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Lang) == "" {
		writeError(w, http.StatusBadRequest, "lang is required")
		return
	}

	// buffered so that a synthesis failure can still change the status code
	var buf bytes.Buffer
	if _, err := s.synth.Synthesize(r.Context(), req.Text, req.Lang, &buf); err != nil {
		if errors.Is(err, audio.ErrEmptyText) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Warn("speech synthesis failed", zap.String("lang", req.Lang), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
