package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newUploadRequest(t *testing.T, content []byte, folder string) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	if folder != "" {
		require.NoError(t, writer.WriteField("folder", folder))
	}
	require.NoError(t, writer.Close())

	request, err := http.NewRequest(http.MethodPost, "/v1/uploads", body)
	require.NoError(t, err)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	return request
}

func TestUploadImage(t *testing.T) {
	user := newUser("seller-1", db.UserRoleSeller)

	testCases := []struct {
		name        string
		content     []byte
		folder      string
		wantStatus  int
		wantFolders []string
	}{
		{
			name:        "DefaultFolder",
			content:     pngHeader,
			wantStatus:  http.StatusCreated,
			wantFolders: []string{FolderSheep},
		},
		{
			name:        "ReceiptFolder",
			content:     pngHeader,
			folder:      FolderReceipts,
			wantStatus:  http.StatusCreated,
			wantFolders: []string{FolderReceipts},
		},
		{
			name:       "UnknownFolder",
			content:    pngHeader,
			folder:     "documents",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NotAnImage",
			content:    []byte("this is plain text pretending to be a png"),
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:       "TooLarge",
			content:    append(append([]byte{}, pngHeader...), make([]byte, maxUploadSize)...),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, deps := newTestServer(t)
			deps.authenticate(user)

			request := newUploadRequest(t, tc.content, tc.folder)
			addAuthorization(t, server, request, user)

			recorder := serve(server, request)
			require.Equal(t, tc.wantStatus, recorder.Code, recorder.Body.String())
			assert.Equal(t, tc.wantFolders, deps.fileStore.folders)

			if tc.wantStatus == http.StatusCreated {
				assert.Equal(t, "https://i.ibb.co/abc/sheep.png", decodeBody[uploadImageResponse](t, recorder).URL)
			}
		})
	}
}

func TestUploadImageRequiresAuth(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := serve(server, newUploadRequest(t, pngHeader, ""))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
