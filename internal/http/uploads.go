package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// UploadsController handles the two big binary uploads: book PDFs and
// profile images. PDFs get their pages counted on the way in so the reader
// can bound page turns.
type UploadsController struct {
	books      BookStore
	profiles   ProfileStore
	blobs      BlobStore
	countPages PageCounter

	maxPDFBytes   int64
	maxImageBytes int64
}

func NewUploadsController(books BookStore, profiles ProfileStore, blobs BlobStore, countPages PageCounter, maxPDFMB, maxImageMB int) *UploadsController {
	if maxPDFMB <= 0 {
		maxPDFMB = 100
	}
	if maxImageMB <= 0 {
		maxImageMB = 5
	}
	return &UploadsController{
		books:         books,
		profiles:      profiles,
		blobs:         blobs,
		countPages:    countPages,
		maxPDFBytes:   int64(maxPDFMB) << 20,
		maxImageBytes: int64(maxImageMB) << 20,
	}
}

// UploadPDF attaches a PDF to a book: the blob is stored, the page count is
// read from the file, and the book's pdf_url and total_pages are updated.
func (controller *UploadsController) UploadPDF(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	book, err := controller.books.GetByID(userID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		respondBadRequest(c, "pdf file is required")
		return
	}
	if fileHeader.Size > controller.maxPDFBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "pdf exceeds the size limit")
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		respondBadRequest(c, "file must be a .pdf")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open uploaded pdf")
		return
	}
	defer file.Close()

	// Spool to a temp file so the page counter can seek through it before
	// the blob is committed to storage
	tmp, err := os.CreateTemp("", "pdf-upload-*.pdf")
	if err != nil {
		respondInternalError(c, err, "spool uploaded pdf")
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		respondInternalError(c, err, "spool uploaded pdf")
		return
	}

	totalPages, err := controller.countPages(tmp.Name())
	if err != nil {
		respondBadRequest(c, "file is not a readable pdf")
		return
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		respondInternalError(c, err, "rewind uploaded pdf")
		return
	}

	objectPath := fmt.Sprintf("pdfs/%d/%s.pdf", userID, uuid.NewString())
	if err := controller.blobs.Upload(c.Request.Context(), objectPath, tmp, false); err != nil {
		respondInternalError(c, err, "store pdf blob")
		return
	}

	oldURL := book.PDFURL
	book.PDFURL = controller.blobs.PublicURL(objectPath)
	book.TotalPages = totalPages
	if err := controller.books.Update(userID, book); err != nil {
		_ = controller.blobs.Delete(c.Request.Context(), objectPath)
		respondInternalError(c, err, "update book")
		return
	}

	// Drop the previous PDF once the new one is referenced
	if old := controller.blobs.StoragePath(oldURL); old != "" {
		_ = controller.blobs.Delete(c.Request.Context(), old)
	}

	c.JSON(http.StatusOK, gin.H{
		"pdf_url":     book.PDFURL,
		"total_pages": totalPages,
	})
}

// UploadAvatar stores a profile image and points the user's profile at it.
func (controller *UploadsController) UploadAvatar(c *gin.Context) {
	userID := GetUserID(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, "image file is required")
		return
	}
	if fileHeader.Size > controller.maxImageBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "image exceeds the size limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		respondBadRequest(c, "unsupported image format "+ext)
		return
	}

	user, err := controller.profiles.GetUserByID(userID)
	if err != nil {
		respondInternalError(c, err, "get user")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open uploaded image")
		return
	}
	defer file.Close()

	objectPath := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), ext)
	if err := controller.blobs.Upload(c.Request.Context(), objectPath, file, false); err != nil {
		respondInternalError(c, err, "store image blob")
		return
	}

	oldURL := user.AvatarURL
	avatarURL := controller.blobs.PublicURL(objectPath)
	if err := controller.profiles.UpdateProfile(userID, user.DisplayName, user.Bio, avatarURL); err != nil {
		_ = controller.blobs.Delete(c.Request.Context(), objectPath)
		respondInternalError(c, err, "update profile")
		return
	}

	if old := controller.blobs.StoragePath(oldURL); old != "" {
		_ = controller.blobs.Delete(c.Request.Context(), old)
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": avatarURL})
}
