package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/legtrack/internal/model"
	"github.com/jjenkins/legtrack/internal/store"
)

var sourceTypes = map[string]model.SourceType{
	"federal":   model.SourceFederal,
	"state":     model.SourceState,
	"executive": model.SourceExecutive,
}

// ListHandler serves a filtered, paginated listing for one source type.
func ListHandler(legislationStore *store.LegislationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		source, ok := sourceTypes[c.Params("type")]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown legislation type"})
		}

		filter := store.ListFilter{
			Source: source,
			Status: model.Status(c.Query("status")),
			Page:   c.QueryInt("page", 1),
			Limit:  c.QueryInt("limit", 20),
		}
		if filter.Limit > 100 {
			filter.Limit = 100
		}

		if v := c.Query("start_date"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start_date"})
			}
			filter.StartDate = t
		}
		if v := c.Query("end_date"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end_date"})
			}
			filter.EndDate = t
		}

		records, total, err := legislationStore.List(ctx, filter)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load legislation"})
		}

		return c.JSON(fiber.Map{
			"total": total,
			"page":  filter.Page,
			"limit": filter.Limit,
			"items": recordsJSON(records),
		})
	}
}

// DetailHandler serves one record with its action audit trail.
func DetailHandler(legislationStore *store.LegislationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id := c.Params("id")

		rec, err := legislationStore.GetByID(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load legislation"})
		}
		if rec == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "legislation not found"})
		}

		actions, err := legislationStore.GetActions(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load actions"})
		}

		body := recordJSON(*rec)
		body["actions"] = actionsJSON(actions)
		return c.JSON(body)
	}
}

// SearchHandler serves substring search over title and summary.
func SearchHandler(legislationStore *store.LegislationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		q := c.Query("q")
		if q == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing query parameter q"})
		}

		var source model.SourceType
		if v := c.Query("type"); v != "" {
			s, ok := sourceTypes[v]
			if !ok {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown legislation type"})
			}
			source = s
		}

		records, err := legislationStore.Search(ctx, q, source)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search failed"})
		}

		return c.JSON(fiber.Map{"items": recordsJSON(records)})
	}
}

// StatsHandler serves per-source record counts.
func StatsHandler(legislationStore *store.LegislationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		counts, err := legislationStore.CountBySource(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load stats"})
		}

		return c.JSON(fiber.Map{
			"federal":   counts[model.SourceFederal],
			"state":     counts[model.SourceState],
			"executive": counts[model.SourceExecutive],
		})
	}
}

func recordsJSON(records []model.Legislation) []fiber.Map {
	out := make([]fiber.Map, len(records))
	for i, rec := range records {
		out[i] = recordJSON(rec)
	}
	return out
}

func recordJSON(rec model.Legislation) fiber.Map {
	body := fiber.Map{
		"id":          rec.ID,
		"type":        rec.SourceType,
		"title":       rec.Title,
		"summary":     rec.Summary,
		"status":      rec.Status,
		"source_url":  rec.SourceURL,
		"extra_data":  rec.ExtraData,
		"created_at":  rec.CreatedAt,
		"updated_at":  rec.UpdatedAt,
	}

	if rec.IntroducedDate.Valid {
		body["introduced_date"] = rec.IntroducedDate.Time
	} else {
		body["introduced_date"] = nil
	}
	if rec.LastActionDate.Valid {
		body["last_action_date"] = rec.LastActionDate.Time
	} else {
		body["last_action_date"] = nil
	}

	return body
}

func actionsJSON(actions []model.LegislativeAction) []fiber.Map {
	out := make([]fiber.Map, len(actions))
	for i, a := range actions {
		out[i] = fiber.Map{
			"id":          a.ID,
			"action_date": a.ActionDate,
			"action_type": a.ActionType,
			"description": a.Description,
			"old_status":  a.OldStatus,
			"new_status":  a.NewStatus,
		}
	}
	return out
}
