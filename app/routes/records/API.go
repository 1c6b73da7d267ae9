package records

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
	"github.com/neptgadgets/school-nexus-final-sub000/app/routes/auth"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// view is one request's run through the pipeline.
type view struct {
	def      *listing.Definition
	all      []listing.Record
	filtered []listing.Record
}

// load resolves the resource, checks access and filters its records. all is already
// limited to the caller's school unless the caller may see every school.
func (h *Handler) load(c *fiber.Ctx, q ListQuery) (*view, error) {
	name := c.Params("resource")
	def, err := h.Defs.Lookup(name)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Unknown resource: "+name)
	}

	user := auth.CurrentUser(c)
	if user == nil || !def.AllowsRole(string(user.Role)) {
		return nil, fiber.NewError(fiber.StatusForbidden, "Insufficient permissions")
	}

	src, ok := h.Sources.Get(name)
	if !ok {
		h.Log.Error("No data source for resource", zap.String("resource", name))
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Resource is not available")
	}

	records, err := src.List(c.UserContext())
	if err != nil {
		h.Log.Error("Failed to load records", zap.String("resource", name), zap.Error(err))
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load records")
	}

	if !user.Role.CrossTenant() {
		records = listing.Filter(records, def.Scoped(def.Predicate("", nil), user.Tenant()))
	}

	return &view{
		def:      def,
		all:      records,
		filtered: listing.Filter(records, def.Predicate(q.Search, selections(c, def))),
	}, nil
}

func (v *view) stats(requested string) (listing.Stats, listing.Scope, error) {
	scope, err := listing.ParseScope(requested, v.def.DefaultScope())
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return listing.Aggregate(scope.Select(v.all, v.filtered), v.def.Spec()), scope, nil
}

// ListAPI returns one page of filtered records with the resource's stats.
func (h *Handler) ListAPI(c *fiber.Ctx) error {
	q := ListQuery{Limit: defaultLimit}
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	v, err := h.load(c, q)
	if err != nil {
		return err
	}
	stats, scope, err := v.stats(q.Scope)
	if err != nil {
		return err
	}

	page, hasMore, nextOffset := paginate(v.filtered, q.Limit, q.Offset)
	return c.JSON(fiber.Map{
		"success":     true,
		"records":     page,
		"count":       len(page),
		"total_count": len(v.filtered),
		"has_more":    hasMore,
		"next_offset": nextOffset,
		"stats":       stats,
		"scope":       scope,
	})
}

// StatsAPI returns only the stats block.
func (h *Handler) StatsAPI(c *fiber.Ctx) error {
	var q ListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	v, err := h.load(c, q)
	if err != nil {
		return err
	}
	stats, scope, err := v.stats(q.Scope)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"stats":       stats,
		"scope":       scope,
		"total_count": len(v.filtered),
	})
}

// ExportAPI downloads every filtered record as CSV or XLSX.
func (h *Handler) ExportAPI(c *fiber.Ctx) error {
	var q ExportQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	v, err := h.load(c, q.ListQuery)
	if err != nil {
		return err
	}

	var (
		body        []byte
		ext         = "csv"
		contentType = "text/csv; charset=utf-8"
	)
	switch q.Format {
	case "xlsx":
		var buf bytes.Buffer
		if err := listing.WriteXLSX(&buf, v.filtered, v.def.Mapping(), v.def.Title); err != nil {
			h.Log.Error("XLSX export failed", zap.String("resource", v.def.Name), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to export records")
		}
		body, ext, contentType = buf.Bytes(), "xlsx", xlsxContentType
	default:
		var delimiter rune
		if q.Delimiter != "" {
			delimiter = []rune(q.Delimiter)[0]
		}
		text, err := listing.ExportDelimited(v.filtered, v.def.Mapping(), delimiter)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid delimiter")
		}
		body = []byte(text)
	}

	tag, err := etag(body)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderETag, tag)
	if c.Get(fiber.HeaderIfNoneMatch) == tag {
		return c.SendStatus(fiber.StatusNotModified)
	}

	c.Attachment(v.def.ExportFilename(time.Now(), ext))
	c.Set(fiber.HeaderContentType, contentType)
	h.Log.Info("Records exported",
		zap.String("resource", v.def.Name),
		zap.String("format", ext),
		zap.Int("records", len(v.filtered)),
		zap.String("user_id", auth.CurrentUser(c).ID),
	)
	return c.Send(body)
}
