package records

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/highwayhash"
	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
)

const defaultLimit = 10

var validate = validator.New()

var etagKey = sha256.Sum256([]byte("school-nexus export etag"))

// ListQuery holds the query parameters shared by all routes. Filter values are read
// separately because their names come from the resource definition.
type ListQuery struct {
	Search string `query:"search" validate:"max=200"`
	Scope  string `query:"scope" validate:"omitempty,oneof=all filtered"`
	Limit  int    `query:"limit" validate:"min=0,max=500"`
	Offset int    `query:"offset" validate:"min=0"`
}

type ExportQuery struct {
	ListQuery
	Format    string `query:"format" validate:"omitempty,oneof=csv xlsx"`
	Delimiter string `query:"delimiter" validate:"omitempty,len=1"`
}

// bindQuery parses and validates the query string into out.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid query parameters: %v", err))
	}
	return nil
}

// selections collects the requested value of every declared filter.
func selections(c *fiber.Ctx, def *listing.Definition) map[string]string {
	out := make(map[string]string, len(def.Filters))
	for _, f := range def.Filters {
		out[f.Name] = c.Query(f.Name, listing.All)
	}
	return out
}

// paginate slices records for one page. A zero limit returns everything after offset.
func paginate(records []listing.Record, limit, offset int) (page []listing.Record, hasMore bool, nextOffset int) {
	if offset >= len(records) {
		return []listing.Record{}, false, len(records)
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end], end < len(records), end
}

func etag(body []byte) (string, error) {
	h, err := highwayhash.New(etagKey[:])
	if err != nil {
		return "", err
	}
	h.Write(body)
	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
