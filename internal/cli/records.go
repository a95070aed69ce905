package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/growkeeper/growkeeper/internal/common"
	"github.com/growkeeper/growkeeper/internal/models"
)

func (a *App) Batches(ctx context.Context) error {
	batches, err := a.store.ListBatches(ctx)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		a.ui.Hint("No batches yet. Use 'addbatch'.")
		return nil
	}

	for _, b := range batches {
		info, err := b.Info()
		if err != nil {
			a.ui.Info("%s  (unreadable: %v)", b.ID(), err)
			continue
		}
		line := fmt.Sprintf("%s  %s", b.ID(), info.Name)
		if info.Strain != "" {
			line += " [" + info.Strain + "]"
		}
		if info.Stage != "" {
			line += "  stage=" + info.Stage
		}
		if !info.StartedAt.IsZero() {
			line += "  started=" + info.StartedAt.Format("2006-01-02")
		}
		a.ui.Info("%s", line)
	}
	return nil
}

func (a *App) AddBatch(ctx context.Context) error {
	id, err := GetSimpleText(a.in, "ID (empty for a random one)", a.out)
	if err != nil {
		return err
	}
	if id == "" {
		id = a.newID()
	}

	name, err := GetSimpleText(a.in, "Name", a.out)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("name must not be empty")
	}
	strain, err := GetSimpleText(a.in, "Strain (optional)", a.out)
	if err != nil {
		return err
	}
	stage, err := GetSimpleText(a.in, "Stage (seedling, veg, flower, ...)", a.out)
	if err != nil {
		return err
	}

	b, err := models.NewBatch(id, models.BatchInfo{
		Name:      name,
		Strain:    strain,
		Stage:     stage,
		StartedAt: a.now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := a.store.UpsertBatch(ctx, b); err != nil {
		return err
	}

	a.ui.Success("Batch %s saved", id)
	return nil
}

func (a *App) Logs(ctx context.Context, args []string) error {
	var (
		logs []models.GrowLog
		err  error
	)
	if len(args) > 0 {
		logs, err = a.store.LogsOfBatch(ctx, args[0])
	} else {
		logs, err = a.store.ListLogs(ctx)
	}
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		a.ui.Hint("No logs.")
		return nil
	}

	for _, l := range logs {
		e, err := l.Entry()
		if err != nil {
			a.ui.Info("%s  (unreadable: %v)", l.ID(), err)
			continue
		}
		line := fmt.Sprintf("%s  %s  %s  %s", l.ID(), e.RecordedAt.Format("2006-01-02 15:04"), e.BatchID, e.Kind)
		if e.Note != "" {
			line += "  " + e.Note
		}
		a.ui.Info("%s", line)
	}
	return nil
}

func (a *App) AddLog(ctx context.Context, args []string) error {
	var batchID string
	if len(args) > 0 {
		batchID = args[0]
	} else {
		var err error
		if batchID, err = GetSimpleText(a.in, "Batch ID", a.out); err != nil {
			return err
		}
	}

	if _, err := a.store.GetBatch(ctx, batchID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("batch %q does not exist", batchID)
		}
		return err
	}

	kind, err := GetSimpleText(a.in, "Kind (watering, feeding, training, ...)", a.out)
	if err != nil {
		return err
	}
	if kind == "" {
		return errors.New("kind must not be empty")
	}
	note, err := GetSimpleText(a.in, "Note (optional)", a.out)
	if err != nil {
		return err
	}

	id := a.newID()
	l, err := models.NewGrowLog(id, models.LogEntry{
		BatchID:    batchID,
		Kind:       kind,
		Note:       note,
		RecordedAt: a.now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := a.store.UpsertLog(ctx, l); err != nil {
		return err
	}

	a.ui.Success("Log %s saved", id)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: delete batch|log <id>")
	}

	var err error
	switch args[0] {
	case "batch":
		err = a.store.DeleteBatch(ctx, args[1])
	case "log":
		err = a.store.DeleteLog(ctx, args[1])
	default:
		return errors.New("usage: delete batch|log <id>")
	}
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%s %q not found", args[0], args[1])
	}
	if err != nil {
		return err
	}

	a.ui.Success("Deleted %s %s", args[0], args[1])
	return nil
}

func (a *App) Settings(ctx context.Context) error {
	s, err := a.store.GetSettings(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		a.ui.Info("%s=%s", k, s[k])
	}
	return nil
}

func (a *App) Set(ctx context.Context, args []string) error {
	name, value, err := models.ParseSetting(strings.Join(args, " "))
	if err != nil {
		return err
	}

	s, err := a.store.GetSettings(ctx)
	if err != nil {
		return err
	}
	s = s.Clone()
	if err := s.Set(name, value); err != nil {
		return err
	}

	if err := a.store.ReplaceSettings(ctx, s); err != nil {
		return err
	}
	a.ui.Success("%s=%s", name, value)
	return nil
}
