package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"
)

const maxUploadSize = 5 << 20

const (
	FolderSheep    = "sheep"
	FolderAvatars  = "avatars"
	FolderReceipts = "receipts"
	FolderAds      = "ads"
)

var (
	ErrFileTooLarge      = fmt.Errorf("image must not exceed %d MB", maxUploadSize>>20)
	ErrUnsupportedImage  = errors.New("image must be a JPEG, PNG or WebP file")
	ErrUnsupportedFolder = errors.New("folder must be one of sheep, avatars, receipts, ads")
)

var (
	allowedImageTypes    = []string{"image/jpeg", "image/png", "image/webp"}
	allowedUploadFolders = []string{FolderSheep, FolderAvatars, FolderReceipts, FolderAds}
)

type uploadImageRequest struct {
	Image  *multipart.FileHeader `form:"image" binding:"required"`
	Folder string                `form:"folder"`
}

type uploadImageResponse struct {
	URL string `json:"url"`
}

//	@Summary		Upload an image
//	@Description	JPEG, PNG or WebP up to 5 MB. Returns the public URL to use in listings, receipts or ads.
//	@Tags			uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		accessToken
//	@Param			image	formData	file	true	"Image file"
//	@Param			folder	formData	string	false	"Destination folder"	Enums(sheep, avatars, receipts, ads)
//	@Success		201		{object}	uploadImageResponse
//	@Failure		413		{object}	map[string]string
//	@Failure		415		{object}	map[string]string
//	@Router			/uploads [post]
func (server *Server) uploadImage(c *gin.Context) {
	user := currentUser(c)
	req := new(uploadImageRequest)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+1<<20)
	if err := c.ShouldBindWith(req, binding.FormMultipart); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse(ErrFileTooLarge))
			return
		}

		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if req.Folder == "" {
		req.Folder = FolderSheep
	}
	if !slices.Contains(allowedUploadFolders, req.Folder) {
		c.JSON(http.StatusBadRequest, errorResponse(ErrUnsupportedFolder))
		return
	}

	if req.Image.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse(ErrFileTooLarge))
		return
	}

	file, err := req.Image.Open()
	if err != nil {
		log.Err(err).Msg("failed to open file")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		log.Err(err).Msg("failed to read file")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}
	if len(fileBytes) > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse(ErrFileTooLarge))
		return
	}

	// The declared content type is not trusted.
	if !slices.Contains(allowedImageTypes, mimetype.Detect(fileBytes).String()) {
		c.JSON(http.StatusUnsupportedMediaType, errorResponse(ErrUnsupportedImage))
		return
	}

	fileName := fmt.Sprintf("%s_%s_%d", req.Folder, user.ID, server.now().UnixNano())

	uploadedFileURL, err := server.fileStore.UploadFile(c, fileBytes, fileName, req.Folder)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to upload file")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusCreated, uploadImageResponse{URL: uploadedFileURL})
}
