package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"resty.dev/v3"
)

const imgbbBaseURL = "https://api.imgbb.com"

// ImgBBStore hosts images on ImgBB.
type ImgBBStore struct {
	client *resty.Client
	apiKey string
}

func NewImgBBStore(apiKey string) *ImgBBStore {
	return newImgBBStore(apiKey, imgbbBaseURL)
}

func newImgBBStore(apiKey, baseURL string) *ImgBBStore {
	return &ImgBBStore{
		client: resty.New().SetBaseURL(baseURL),
		apiKey: apiKey,
	}
}

type imgbbResponse struct {
	Data struct {
		ID         string `json:"id"`
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Success bool  `json:"success"`
	Status  int64 `json:"status"`
}

type imgbbError struct {
	StatusCode int64 `json:"status_code"`
	Error      struct {
		Message string `json:"message"`
	} `json:"error"`
}

// UploadFile sends the image as multipart form data. ImgBB has no folders, so the folder becomes a name prefix.
func (s *ImgBBStore) UploadFile(ctx context.Context, data []byte, filename string, folder string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if folder != "" {
		name = folder + "_" + name
	}

	var result imgbbResponse
	var apiErr imgbbError

	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", s.apiKey).
		SetFormData(map[string]string{"name": name}).
		SetFileReader("image", filename, bytes.NewReader(data)).
		SetResult(&result).
		SetError(&apiErr).
		Post("/1/upload")
	if err != nil {
		return "", fmt.Errorf("failed to upload file to imgbb: %w", err)
	}

	if res.IsError() || !result.Success {
		return "", fmt.Errorf("imgbb rejected upload (status %d): %s", res.StatusCode(), apiErr.Error.Message)
	}

	return result.Data.URL, nil
}
