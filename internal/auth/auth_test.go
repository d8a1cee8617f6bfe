package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/aivodrive/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test User",
		Email: "test@fleet.io",
		Role:  models.RoleAdmin,
	}
}

func TestNewService(t *testing.T) {
	service := NewService("", 0)
	assert.NotNil(t, service)
	assert.Equal(t, []byte(DefaultSecret), service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)

	service = NewService("s3cret", time.Hour)
	assert.Equal(t, []byte("s3cret"), service.jwtSecret)
	assert.Equal(t, time.Hour, service.tokenExp)
}

func TestService_HashPassword(t *testing.T) {
	service := NewService("", 0)

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestService_CheckPassword(t *testing.T) {
	service := NewService("", 0)

	password := "testpassword123"
	hash, _ := service.HashPassword(password)

	// Test correct password
	assert.True(t, service.CheckPassword(password, hash))

	// Test incorrect password
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_ValidateToken(t *testing.T) {
	service := NewService("", 0)
	user := testUser()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	// Test valid token
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Name, claims.Name)
	assert.Equal(t, user.Role, claims.Role)
	assert.Empty(t, claims.DriverID)

	// Test invalid token
	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)

	// Test token with Bearer prefix
	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	// Test token signed with another secret
	_, err = NewService("other", 0).ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_DriverClaim(t *testing.T) {
	service := NewService("", 0)
	user := testUser()
	user.Role = models.RoleDriver
	user.DriverID = primitive.NewObjectID().Hex()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.DriverID, claims.DriverID)
}

func TestService_TokenExpiration(t *testing.T) {
	issued := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	service := NewService("", time.Hour).WithClock(func() time.Time { return issued })

	token, _ := service.GenerateToken(testUser())

	// Token should be valid immediately
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.Exp)

	later := service.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = later.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestDecode(t *testing.T) {
	issued := time.Now().Add(-48 * time.Hour)
	service := NewService("", time.Hour).WithClock(func() time.Time { return issued })
	user := testUser()

	token, _ := service.GenerateToken(user)

	// Expired and signed with an unknown secret, but still decodable
	claims, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.Exp)

	_, err = Decode("not.a.jwt")
	assert.Equal(t, ErrInvalidToken, err)
	_, err = Decode("")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := NewService("", 0)

	// Test valid header
	token := "valid-token"
	header := "Bearer " + token
	extracted, err := service.ExtractTokenFromHeader(header)
	assert.NoError(t, err)
	assert.Equal(t, token, extracted)

	// Test empty header
	_, err = service.ExtractTokenFromHeader("")
	assert.Equal(t, ErrInvalidToken, err)

	// Test invalid format
	_, err = service.ExtractTokenFromHeader("InvalidFormat")
	assert.Equal(t, ErrInvalidToken, err)

	// Test missing token
	_, err = service.ExtractTokenFromHeader("Bearer ")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidatePassword(t *testing.T) {
	service := NewService("", 0)

	// Test valid password
	err := service.ValidatePassword("validpassword123")
	assert.NoError(t, err)

	// Test too short password
	err = service.ValidatePassword("short")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}
