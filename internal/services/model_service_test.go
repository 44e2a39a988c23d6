// internal/services/model_service_test.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/threedframe/threedframe-backend/internal/models"
)

// fakeStorage records uploads and deletions and can be told to fail on a
// given folder, which lets the tests exercise the cleanup path without S3.
type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	deletes []string
	failOn  string
}

func (f *fakeStorage) UploadFile(file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn != "" && options.Folder == f.failOn {
		return nil, fmt.Errorf("%w: bucket unavailable", ErrStorage)
	}

	if _, err := io.ReadAll(file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	key := fmt.Sprintf("%s/%s_%s", options.Folder, uuid.NewString()[:8], header.Filename)
	f.uploads = append(f.uploads, key)
	return &UploadResult{
		URL:      "https://cdn.example.com/" + key,
		Key:      key,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
	}, nil
}

func (f *fakeStorage) DeleteFile(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeStorage) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

// newFileHeader builds a real multipart.FileHeader whose Open method works,
// by round-tripping a form through the multipart reader.
func newFileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	headers := form.File[field]
	require.Len(t, headers, 1)
	return headers[0]
}

type ModelServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	storage *fakeStorage
	service *ModelService
	owner   *models.User
	admin   *models.User
	request *models.Request
}

func (suite *ModelServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.storage = &fakeStorage{}
	suite.service = NewModelService(suite.db, suite.storage, newTestConfig())
	suite.owner = createTestUser(suite.T(), suite.db, "Alice Owner", false)
	suite.admin = createTestUser(suite.T(), suite.db, "Bob Admin", true)
	suite.request = createTestRequest(suite.T(), suite.db, suite.owner, "Rocking horse", time.Now())
}

func (suite *ModelServiceTestSuite) glb() *multipart.FileHeader {
	return newFileHeader(suite.T(), "glbFile", "horse.glb", []byte("glTF-binary"))
}

func (suite *ModelServiceTestSuite) usdz() *multipart.FileHeader {
	return newFileHeader(suite.T(), "usdzFile", "horse.usdz", []byte("usdz-archive"))
}

func (suite *ModelServiceTestSuite) poster() *multipart.FileHeader {
	return newFileHeader(suite.T(), "posterImage", "horse.png", []byte("png-bytes"))
}

func (suite *ModelServiceTestSuite) TestUploadRequiresAdmin() {
	_, err := suite.service.UploadModel(suite.request.ID, suite.owner.ID, suite.glb(), suite.usdz(), nil)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
	assert.Empty(suite.T(), suite.storage.uploads)
}

func (suite *ModelServiceTestSuite) TestUploadRequiresBothModelFiles() {
	_, err := suite.service.UploadModel(suite.request.ID, suite.admin.ID, suite.glb(), nil, nil)
	assert.ErrorIs(suite.T(), err, ErrValidation)

	_, err = suite.service.UploadModel(suite.request.ID, suite.admin.ID, nil, suite.usdz(), nil)
	assert.ErrorIs(suite.T(), err, ErrValidation)

	// Neither partial attempt touched the request or created a model.
	var reloaded models.Request
	suite.Require().NoError(suite.db.First(&reloaded, suite.request.ID).Error)
	assert.Equal(suite.T(), models.RequestStatusPending, reloaded.Status)
	assert.Nil(suite.T(), reloaded.ModelID)

	var count int64
	suite.db.Model(&models.Model{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *ModelServiceTestSuite) TestUploadUnknownRequest() {
	_, err := suite.service.UploadModel(uuid.New(), suite.admin.ID, suite.glb(), suite.usdz(), nil)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
	assert.Empty(suite.T(), suite.storage.uploads)
}

func (suite *ModelServiceTestSuite) TestUploadCompletesRequest() {
	model, err := suite.service.UploadModel(suite.request.ID, suite.admin.ID, suite.glb(), suite.usdz(), suite.poster())
	suite.Require().NoError(err)

	assert.Equal(suite.T(), suite.request.ID, model.RequestID)
	assert.Contains(suite.T(), model.GlbFile, "models/glb/")
	assert.Contains(suite.T(), model.UsdzFile, "models/usdz/")
	assert.Contains(suite.T(), model.PosterImage, "models/posters/")

	var reloaded models.Request
	suite.Require().NoError(suite.db.First(&reloaded, suite.request.ID).Error)
	assert.Equal(suite.T(), models.RequestStatusCompleted, reloaded.Status)
	suite.Require().NotNil(reloaded.ModelID)
	assert.Equal(suite.T(), model.ID, *reloaded.ModelID)

	assert.Len(suite.T(), suite.storage.uploads, 3)
	assert.Empty(suite.T(), suite.storage.deletedKeys())
}

func (suite *ModelServiceTestSuite) TestUploadPosterIsOptional() {
	model, err := suite.service.UploadModel(suite.request.ID, suite.admin.ID, suite.glb(), suite.usdz(), nil)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), model.PosterImage)
	assert.Len(suite.T(), suite.storage.uploads, 2)
}

func (suite *ModelServiceTestSuite) TestStorageFailureLeavesRequestUntouched() {
	suite.storage.failOn = "models/usdz"

	_, err := suite.service.UploadModel(suite.request.ID, suite.admin.ID, suite.glb(), suite.usdz(), nil)
	assert.ErrorIs(suite.T(), err, ErrStorage)

	var reloaded models.Request
	suite.Require().NoError(suite.db.First(&reloaded, suite.request.ID).Error)
	assert.Equal(suite.T(), models.RequestStatusPending, reloaded.Status)
	assert.Nil(suite.T(), reloaded.ModelID)

	var count int64
	suite.db.Model(&models.Model{}).Count(&count)
	assert.Zero(suite.T(), count)

	// The GLB that did land in storage got discarded.
	suite.Require().Len(suite.storage.uploads, 1)
	assert.Equal(suite.T(), suite.storage.uploads, suite.storage.deletedKeys())
}

func (suite *ModelServiceTestSuite) TestReuploadReplacesModelAndDiscardsOldAssets() {
	first, err := suite.service.UploadModel(suite.request.ID, suite.admin.ID, suite.glb(), suite.usdz(), suite.poster())
	suite.Require().NoError(err)
	oldKeys := []string{first.GlbKey, first.UsdzKey, first.PosterKey}

	second, err := suite.service.UploadModel(suite.request.ID, suite.admin.ID, suite.glb(), suite.usdz(), nil)
	suite.Require().NoError(err)
	assert.NotEqual(suite.T(), first.ID, second.ID)

	var count int64
	suite.db.Model(&models.Model{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)

	var reloaded models.Request
	suite.Require().NoError(suite.db.First(&reloaded, suite.request.ID).Error)
	suite.Require().NotNil(reloaded.ModelID)
	assert.Equal(suite.T(), second.ID, *reloaded.ModelID)

	// Replaced assets are deleted asynchronously.
	suite.Require().Eventually(func() bool {
		return len(suite.storage.deletedKeys()) == len(oldKeys)
	}, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(suite.T(), oldKeys, suite.storage.deletedKeys())
}

func (suite *ModelServiceTestSuite) TestGetModelAuthorization() {
	model, err := suite.service.UploadModel(suite.request.ID, suite.admin.ID, suite.glb(), suite.usdz(), nil)
	suite.Require().NoError(err)

	got, err := suite.service.GetModel(model.ID, suite.owner.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), model.ID, got.ID)

	_, err = suite.service.GetModel(model.ID, suite.admin.ID)
	assert.NoError(suite.T(), err)

	stranger := createTestUser(suite.T(), suite.db, "Carol Stranger", false)
	_, err = suite.service.GetModel(model.ID, stranger.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *ModelServiceTestSuite) TestGetPublicModelData() {
	model, err := suite.service.UploadModel(suite.request.ID, suite.admin.ID, suite.glb(), suite.usdz(), suite.poster())
	suite.Require().NoError(err)

	data, err := suite.service.GetPublicModelData(model.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), model.GlbFile, data.GlbFile)
	assert.Equal(suite.T(), model.UsdzFile, data.UsdzFile)
	assert.Equal(suite.T(), model.PosterImage, data.PosterImage)

	_, err = suite.service.GetPublicModelData(uuid.New())
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ModelServiceTestSuite) TestGetEmbedCode() {
	model, err := suite.service.UploadModel(suite.request.ID, suite.admin.ID, suite.glb(), suite.usdz(), nil)
	suite.Require().NoError(err)

	code, err := suite.service.GetEmbedCode(model.ID, suite.owner.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), strings.HasPrefix(code, "<iframe "))
	assert.Contains(suite.T(), code, fmt.Sprintf("https://viewer.example.com/embed/%s", model.ID))
	assert.Contains(suite.T(), code, `xr-spatial-tracking`)
}

func TestModelServiceSuite(t *testing.T) {
	suite.Run(t, new(ModelServiceTestSuite))
}

func TestModelUploadOptionsRejectWrongExtension(t *testing.T) {
	svc := &StorageService{config: newTestConfig()}
	header := newFileHeader(t, "glbFile", "horse.obj", []byte("not-gltf"))

	file, err := header.Open()
	require.NoError(t, err)
	defer file.Close()

	_, err = svc.UploadFile(file, header, GetModelUploadOptions("glb"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, ".obj", filepath.Ext(header.Filename))
}
