package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Audio containers browsers produce with MediaRecorder.
var allowedAudioExtensions = map[string]bool{
	".webm": true,
	".ogg":  true,
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
}

type RecordingsController struct {
	recordings RecordingStore
	books      BookStore
	blobs      BlobStore
}

func NewRecordingsController(recordings RecordingStore, books BookStore, blobs BlobStore) *RecordingsController {
	return &RecordingsController{recordings: recordings, books: books, blobs: blobs}
}

func (controller *RecordingsController) ListRecordings(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	recordings, err := controller.recordings.ListForBook(GetUserID(c), bookID)
	if err != nil {
		respondInternalError(c, err, "list recordings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": recordings, "count": len(recordings)})
}

// UploadRecording accepts a multipart form with an "audio" file plus title
// and duration_seconds fields, stores the blob, and records its metadata.
func (controller *RecordingsController) UploadRecording(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	if _, err := controller.books.GetByID(userID, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		respondBadRequest(c, "audio file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAudioExtensions[ext] {
		respondBadRequest(c, "unsupported audio format "+ext)
		return
	}

	durationSeconds := 0
	if v := c.PostForm("duration_seconds"); v != "" {
		durationSeconds, err = strconv.Atoi(v)
		if err != nil || durationSeconds < 0 {
			respondBadRequest(c, "invalid duration_seconds")
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open uploaded audio")
		return
	}
	defer file.Close()

	objectPath := fmt.Sprintf("audio/%d/%s%s", userID, uuid.NewString(), ext)
	if err := controller.blobs.Upload(c.Request.Context(), objectPath, file, false); err != nil {
		respondInternalError(c, err, "store audio blob")
		return
	}

	recording := &entities.VoiceRecording{
		UserID:          userID,
		BookID:          bookID,
		Title:           c.PostForm("title"),
		AudioURL:        controller.blobs.PublicURL(objectPath),
		DurationSeconds: durationSeconds,
	}
	if err := controller.recordings.Create(recording); err != nil {
		// Roll the blob back so it does not leak
		_ = controller.blobs.Delete(c.Request.Context(), objectPath)
		respondInternalError(c, err, "create recording")
		return
	}
	respondCreated(c, recording)
}

func (controller *RecordingsController) DeleteRecording(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	recording, err := controller.recordings.Delete(GetUserID(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "recording")
			return
		}
		respondInternalError(c, err, "delete recording")
		return
	}

	if path := controller.blobs.StoragePath(recording.AudioURL); path != "" {
		_ = controller.blobs.Delete(c.Request.Context(), path)
	}
	respondSuccess(c, "recording deleted")
}
