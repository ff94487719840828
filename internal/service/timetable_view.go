package service

import (
	"fmt"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

const (
	publishedCachePrefix  = "timetable:published"
	professorCachePrefix  = "timetable:professor"
	professorCachePattern = professorCachePrefix + ":*"
)

func publishedGroupCacheKey(key models.GroupKey) string {
	return fmt.Sprintf("%s:%s:%s", publishedCachePrefix, key.Year, key.Group)
}

func professorCacheKey(professorID string) string {
	return fmt.Sprintf("%s:%s", professorCachePrefix, professorID)
}

func gridFromRecords(key models.GroupKey, records []models.SessionRecord) *timetable.Grid {
	placements := make([]timetable.Placement, 0, len(records))
	for _, rec := range records {
		placements = append(placements, timetable.Placement{Key: rec.Key(), Cell: rec.Cell(), Session: rec.Session()})
	}
	return timetable.GridFromPlacements(key, placements)
}

func recordsFromGrid(g *timetable.Grid, copyKind models.GridCopy) []models.SessionRecord {
	if g == nil {
		return nil
	}
	placements := g.Placements()
	records := make([]models.SessionRecord, 0, len(placements))
	for _, p := range placements {
		records = append(records, models.NewSessionRecord(p.Key, p.Cell, copyKind, p.Session))
	}
	return records
}

// gridView groups placements (already in day/slot order) into rendered cells.
func gridView(key models.GroupKey, copyKind models.GridCopy, placements []timetable.Placement) *dto.GridView {
	view := &dto.GridView{Year: key.Year, Group: key.Group, Copy: copyKind, Cells: []dto.CellView{}}
	for _, p := range placements {
		n := len(view.Cells)
		if n == 0 || view.Cells[n-1].Day != p.Cell.Day || view.Cells[n-1].Slot != p.Cell.Slot {
			view.Cells = append(view.Cells, dto.CellView{
				Day:       p.Cell.Day,
				Slot:      p.Cell.Slot,
				TimeRange: p.Cell.Slot.Label(),
			})
			n++
		}
		view.Cells[n-1].Sessions = append(view.Cells[n-1].Sessions, withColor(dto.SessionPayloadFrom(p.Session), p.Session))
	}
	return view
}

func withColor(payload dto.SessionPayload, s models.Session) dto.SessionPayload {
	if payload.Color == "" {
		payload.Color = s.Primary.ClassType.DefaultColor()
	}
	return payload
}
