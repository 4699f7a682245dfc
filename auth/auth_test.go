package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/hiremind/backend/config"
	"github.com/hiremind/backend/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPassword(t *testing.T) {
	Convey("Given a hashed password", t, func() {
		hash, err := HashPassword("password123")
		So(err, ShouldBeNil)
		So(hash, ShouldNotEqual, "password123")

		Convey("Then only the original password matches", func() {
			So(CheckPassword("password123", hash), ShouldBeTrue)
			So(CheckPassword("password124", hash), ShouldBeFalse)
			So(CheckPassword("password123", ""), ShouldBeFalse)
		})
	})
}

func TestKeyCipher(t *testing.T) {
	Convey("Given a key cipher", t, func() {
		cfg := config.New()
		cipher, err := NewKeyCipher(cfg)
		So(err, ShouldBeNil)

		Convey("When encrypting an API key", func() {
			enc, err := cipher.Encrypt("AIza-secret")
			So(err, ShouldBeNil)

			Convey("Then the ciphertext is nonce:sealed hex and round-trips", func() {
				So(strings.Count(enc, ":"), ShouldEqual, 1)
				So(enc, ShouldNotContainSubstring, "AIza")

				plain, err := cipher.Decrypt(enc)
				So(err, ShouldBeNil)
				So(plain, ShouldEqual, "AIza-secret")
			})

			Convey("Then encrypting twice yields different ciphertexts", func() {
				again, err := cipher.Encrypt("AIza-secret")
				So(err, ShouldBeNil)
				So(again, ShouldNotEqual, enc)
			})

			Convey("Then a cipher with another secret cannot decrypt it", func() {
				other := config.New()
				other.EncryptionKey = "another-secret"
				otherCipher, err := NewKeyCipher(other)
				So(err, ShouldBeNil)

				_, err = otherCipher.Decrypt(enc)
				So(err, ShouldEqual, ErrInvalidCiphertext)
			})
		})

		Convey("Then empty keys stay empty", func() {
			enc, err := cipher.Encrypt("")
			So(err, ShouldBeNil)
			So(enc, ShouldBeEmpty)
			dec, err := cipher.Decrypt("")
			So(err, ShouldBeNil)
			So(dec, ShouldBeEmpty)
		})

		Convey("Then malformed ciphertexts are rejected", func() {
			for _, bad := range []string{"nocolon", "zz:zz", "00:00"} {
				_, err := cipher.Decrypt(bad)
				So(err, ShouldEqual, ErrInvalidCiphertext)
			}
		})
	})
}

func TestJWTService(t *testing.T) {
	Convey("Given a JWT service", t, func() {
		cfg := config.New()
		svc := NewJWTService(cfg)
		user := &models.User{ID: "u-1", Email: "jane@example.com", Name: "Jane"}

		token, err := svc.GenerateToken(user)
		So(err, ShouldBeNil)

		Convey("Then the token validates to the user's claims", func() {
			claims, err := svc.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "u-1")
			So(claims.Email, ShouldEqual, "jane@example.com")
			So(claims.Name, ShouldEqual, "Jane")
			So(claims.Issuer, ShouldEqual, "hiremind")
		})

		Convey("Then a token signed with another secret is rejected", func() {
			other := config.New()
			other.JWTSecret = "different"
			_, err := NewJWTService(other).ValidateToken(token)
			So(err, ShouldNotBeNil)
		})

		Convey("Then an expired token is rejected", func() {
			claims := &Claims{
				UserID: "u-1",
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    "hiremind",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				},
			}
			expired, err := svc.sign(claims)
			So(err, ShouldBeNil)
			_, err = svc.ValidateToken(expired)
			So(err, ShouldNotBeNil)
		})

		Convey("Then refreshing keeps the identity", func() {
			refreshed, err := svc.RefreshToken(token)
			So(err, ShouldBeNil)
			claims, err := svc.ValidateToken(refreshed)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "u-1")
		})
	})
}

func TestMiddleware(t *testing.T) {
	cfg := config.New()
	cfg.AdminEmails = "admin@example.com"
	svc := NewJWTService(cfg)

	tokenFor := func(email string) string {
		tok, err := svc.GenerateToken(&models.User{ID: "id-" + email, Email: email})
		if err != nil {
			t.Fatal(err)
		}
		return tok
	}

	newRouter := func(c *config.Config) *gin.Engine {
		r := gin.New()
		r.GET("/me", AuthMiddleware(svc), func(c *gin.Context) {
			c.String(http.StatusOK, GetAuthClaims(c).Email)
		})
		r.GET("/admin", AuthMiddleware(svc), RequireAdmin(c), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return r
	}

	prod := *cfg
	prod.Environment = config.EnvProduction

	tests := []struct {
		name   string
		cfg    *config.Config
		path   string
		header string
		want   int
	}{
		{name: "missing header", cfg: cfg, path: "/me", want: http.StatusUnauthorized},
		{name: "wrong scheme", cfg: cfg, path: "/me", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", cfg: cfg, path: "/me", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "valid token", cfg: cfg, path: "/me", header: "Bearer " + tokenFor("jane@example.com"), want: http.StatusOK},
		{name: "dev admin any user", cfg: cfg, path: "/admin", header: "Bearer " + tokenFor("jane@example.com"), want: http.StatusNoContent},
		{name: "prod admin non-admin", cfg: &prod, path: "/admin", header: "Bearer " + tokenFor("jane@example.com"), want: http.StatusForbidden},
		{name: "prod admin listed", cfg: &prod, path: "/admin", header: "Bearer " + tokenFor("Admin@Example.com"), want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			newRouter(tt.cfg).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
