package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"docqa/internal/domain"
	"docqa/internal/logging"
	"docqa/internal/service"
	"docqa/internal/transport/http/response"
)

const maxUploadSize = 20 << 20 // 20 MB

type SessionHandler struct {
	store       *service.SessionStore
	defaultTopK int
	log         *logrus.Entry
}

// SearchRequest takes the configured default top_k when TopK is absent.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k"`
}

type SearchHit struct {
	Rank     int     `json:"rank"`
	Position int     `json:"position"`
	ChunkID  string  `json:"chunk_id"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

type SearchResponse struct {
	Query   string      `json:"query"`
	TopK    int         `json:"top_k"`
	Results []SearchHit `json:"results"`
}

type SummarizeResponse struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

func NewSessionHandler(store *service.SessionStore, defaultTopK int, log *logrus.Entry) *SessionHandler {
	return &SessionHandler{store: store, defaultTopK: defaultTopK, log: logging.Component(log, "http")}
}

func (h *SessionHandler) Create(c *gin.Context) {
	sess := h.store.Create()
	h.log.WithField("session", sess.ID()).Info("session created")
	response.OK(c, sess.Info())
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	response.OK(c, sess.Info())
}

func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"deleted_session_id": id})
}

// Upload accepts a multipart form with "file" and replaces the session document.
func (h *SessionHandler) Upload(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 20MB)")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	result, err := sess.Ingest(c.Request.Context(), filepath.Base(file.Filename), data)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, result)
}

func (h *SessionHandler) Search(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	topK := h.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	results, err := sess.Search(c.Request.Context(), req.Query, topK)
	if err != nil {
		h.fail(c, err)
		return
	}
	hits := make([]SearchHit, len(results))
	for i, r := range results {
		hits[i] = SearchHit{
			Rank:     i + 1,
			Position: r.Chunk.Index,
			ChunkID:  r.Chunk.ChunkID,
			Text:     r.Chunk.Text,
			Distance: r.Distance,
		}
	}
	response.OK(c, SearchResponse{Query: req.Query, TopK: topK, Results: hits})
}

func (h *SessionHandler) Summarize(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	summary, err := sess.Summarize(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, SummarizeResponse{Query: summary.Query, Answer: summary.Answer})
}

func (h *SessionHandler) session(c *gin.Context) (*service.Session, bool) {
	sess, err := h.store.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
	case errors.Is(err, domain.ErrUnsupportedFileType):
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedFileType, err.Error())
	case errors.Is(err, domain.ErrExtraction):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeExtractionFailed, err.Error())
	case errors.Is(err, domain.ErrNoRetrievalYet):
		response.Error(c, http.StatusConflict, response.CodeNoRetrievalYet, err.Error())
	case errors.Is(err, domain.ErrTopKOutOfRange):
		response.Error(c, http.StatusBadRequest, response.CodeTopKOutOfRange, err.Error())
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, err.Error())
	}
}
