package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Emilio-Bravo/polieduca/config"
	"github.com/Emilio-Bravo/polieduca/models"
	"github.com/Emilio-Bravo/polieduca/routes"
	"github.com/Emilio-Bravo/polieduca/utils"
)

// fakeStorage reemplaza a Supabase en los tests: registra subidas y
// borrados sin tocar la red.
type fakeStorage struct {
	mu      sync.Mutex
	uploads int
	deleted []string
}

func (f *fakeStorage) Upload(fileHeader *multipart.FileHeader, fileID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return "https://cdn.test/storage/v1/object/public/uploads/materials/" + fileID, nil
}

func (f *fakeStorage) Delete(publicURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicURL)
	return nil
}

func (f *fakeStorage) deletedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deleted))
	copy(out, f.deleted)
	return out
}

func setupTest(t *testing.T) (*gin.Engine, *gorm.DB, *fakeStorage) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secreto-de-prueba")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("no se pudo abrir sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("no se pudo obtener sql.DB: %v", err)
	}
	// Una sola conexión: cada conexión a :memory: vería otra base
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// El middleware de auth consulta el handle global
	config.DB = db

	storage := &fakeStorage{}
	utils.Storage = storage

	r := routes.SetupRouter(gin.New(), db)
	return r, db, storage
}

func createUser(t *testing.T, db *gorm.DB, name, email string, role models.UserRole) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("no se pudo crear el usuario %s: %v", email, err)
	}
	return user
}

func createMaterial(t *testing.T, db *gorm.DB, owner models.User, title string, semester, unit int) models.Material {
	t.Helper()
	material := models.Material{
		UserID:   owner.ID,
		Title:    title,
		Semester: semester,
		Unit:     unit,
		FilePath: "https://cdn.test/storage/v1/object/public/uploads/materials/" + uuid.NewString(),
	}
	if err := db.Create(&material).Error; err != nil {
		t.Fatalf("no se pudo crear el material %q: %v", title, err)
	}
	return material
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		t.Fatalf("no se pudo generar el token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(t *testing.T, r *gin.Engine, method, path, token string, fields map[string]string, fileName string, fileContent []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(fileContent); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("respuesta no es JSON: %v (%s)", err, w.Body.String())
	}
	return body
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, se esperaba %d; body: %s", w.Code, want, w.Body.String())
	}
}

func materialPath(id uuid.UUID) string {
	return fmt.Sprintf("/api/materials/%s", id)
}
