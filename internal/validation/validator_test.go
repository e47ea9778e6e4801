package validation_test

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"floorkeeper/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"nombre" binding:"required,nospaces,max=5"`
	Date  string `json:"fecha" binding:"omitempty,ymd"`
	Clock string `json:"hora" binding:"omitempty,hhmm"`
	Kind  string `json:"tipo" binding:"omitempty,oneof=a b"`
	Count int    `json:"cuenta"`
}

func bind(t *testing.T, body string) []validation.FieldError {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Initialize()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var s sample
	err := c.ShouldBindJSON(&s)
	if err == nil {
		return nil
	}
	return validation.Describe(err)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantMsg   string
		wantOK    bool
	}{
		{
			name:   "Valid body",
			body:   `{"nombre":"ana","fecha":"2026-11-20","hora":"19:30","tipo":"a"}`,
			wantOK: true,
		},
		{
			name:      "Blank name",
			body:      `{"nombre":"   "}`,
			wantField: "nombre",
			wantMsg:   "is required",
		},
		{
			name:      "Name too long",
			body:      `{"nombre":"abcdefg"}`,
			wantField: "nombre",
			wantMsg:   "must be at most 5 characters",
		},
		{
			name:      "Bad date",
			body:      `{"nombre":"ana","fecha":"20/11/2026"}`,
			wantField: "fecha",
			wantMsg:   "must be a date in YYYY-MM-DD format",
		},
		{
			name:   "Clock with seconds",
			body:   `{"nombre":"ana","hora":"19:30:00"}`,
			wantOK: true,
		},
		{
			name:      "Bad clock seconds",
			body:      `{"nombre":"ana","hora":"19:30:61"}`,
			wantField: "hora",
		},
		{
			name:      "Bad clock",
			body:      `{"nombre":"ana","hora":"25:00"}`,
			wantField: "hora",
			wantMsg:   "must be a time of day in HH:MM format",
		},
		{
			name:      "Bad enum",
			body:      `{"nombre":"ana","tipo":"c"}`,
			wantField: "tipo",
			wantMsg:   "must be one of: a, b",
		},
		{
			name:      "Wrong type",
			body:      `{"nombre":"ana","cuenta":"many"}`,
			wantField: "cuenta",
			wantMsg:   "must be of type int",
		},
		{
			name: "Malformed JSON",
			body: `{"nombre":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bind(t, tt.body)
			if tt.wantOK {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errs[0].Message)
			}
		})
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		validation.Initialize()
		validation.Initialize()
	})
}
