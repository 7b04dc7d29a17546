package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/minijira/issue-tracker/pkg/util"
)

// pathID parses a numeric route parameter. Ids that cannot exist, such as
// zero, are left to the lookup so they report not found.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(name+" must be an integer", map[string]any{name: raw})
	}
	return id, nil
}

// parseBody decodes a JSON body, reporting malformed input as a validation
// error.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}

// singleQuery rejects a query string that repeats any of keys.
func singleQuery(c *fiber.Ctx, keys ...string) error {
	args := c.Context().QueryArgs()
	for _, key := range keys {
		if values := args.PeekMulti(key); len(values) > 1 {
			return apperrors.NewValidationError(key+" must be given at most once",
				map[string]any{key: len(values)})
		}
	}
	return nil
}
