package handlers

import (
	"errors"
	"fmt"

	"microcredit-api/internal/core/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

var errBadBody = errors.New("invalid request body")

// bind parses the JSON body into out and runs its validate tags. The
// returned error message is safe to show to clients.
func bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errBadBody
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on %s", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

// viewer reads the identity AuthMiddleware stored in locals
func viewer(c *fiber.Ctx) (services.Viewer, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return services.Viewer{}, false
	}
	tenantID, _ := c.Locals("tenantID").(string)
	role, _ := c.Locals("role").(string)
	return services.Viewer{UserID: userID, TenantID: tenantID, Role: role}, true
}
