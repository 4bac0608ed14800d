package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/pkg/jwt"
)

const testSecret = "secreto-de-pruebas"

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	api := app.Group("/api", AuthMiddleware(testSecret))
	api.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  GetUserID(c),
			"store_id": GetStoreID(c),
			"role":     GetRole(c),
		})
	})
	api.Get("/admin", RequireRole("admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	api.Get("/bodega", RequireRole("admin", "bodeguero"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	token, err := jwt.Generate(secret, "u1", "s1", role, "kardex-test", 5)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_SinHeader(t *testing.T) {
	app := newAuthApp(t)

	req := httptest.NewRequest("GET", "/api/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := newAuthApp(t)

	for _, header := range []string{"Basic abc123", "Bearer", "solo-el-token"} {
		req := httptest.NewRequest("GET", "/api/whoami", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "header: %q", header)
	}
}

func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	app := newAuthApp(t)

	token := signToken(t, "otro-secreto", "admin")
	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenExpirado(t *testing.T) {
	app := newAuthApp(t)

	token, err := jwt.Generate(testSecret, "u1", "s1", "admin", "kardex-test", -1)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := newAuthApp(t)

	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "vendedor"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := newAuthApp(t)

	req := httptest.NewRequest("GET", "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "admin"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole_VendedorNoAccedeRutaAdmin(t *testing.T) {
	app := newAuthApp(t)

	req := httptest.NewRequest("GET", "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "vendedor"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRole_ListaDeRoles(t *testing.T) {
	app := newAuthApp(t)

	req := httptest.NewRequest("GET", "/api/bodega", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "bodeguero"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWT_GenerateYParse(t *testing.T) {
	token, err := jwt.Generate(testSecret, "u7", "s3", "bodeguero", "kardex-test", 10)
	require.NoError(t, err)

	userID, storeID, role, err := jwt.Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "u7", userID)
	assert.Equal(t, "s3", storeID)
	assert.Equal(t, "bodeguero", role)
}
