package handlers

import (
	"mime"
	"net/http"
	"os"

	"github.com/rbyte/rbyte-api/internal/service"
	"github.com/sirupsen/logrus"
)

const curriculumFilename = "RByte.ai_AI_Engineering_Curriculum.pdf"

type AssetHandlers struct {
	curriculumPath string
	logger         *logrus.Logger
}

func NewAssetHandlers(curriculumPath string, logger *logrus.Logger) *AssetHandlers {
	return &AssetHandlers{
		curriculumPath: curriculumPath,
		logger:         logger,
	}
}

func (h *AssetHandlers) Curriculum(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.curriculumPath)
	if err != nil {
		h.logger.WithError(err).WithField("path", h.curriculumPath).Warn("Curriculum PDF not available")
		respondWithServiceError(w, h.logger, service.NotFoundError("Curriculum PDF not found"), "Failed to load curriculum")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		respondWithServiceError(w, h.logger, service.NotFoundError("Curriculum PDF not found"), "Failed to load curriculum")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": curriculumFilename}))
	http.ServeContent(w, r, curriculumFilename, info.ModTime(), f)
}
