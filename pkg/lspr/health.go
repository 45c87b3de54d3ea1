package lspr

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Health statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
)

// HealthCheck is the outcome of one readiness check.
type HealthCheck struct {
	Name   string `json:"name" yaml:"name"`
	OK     bool   `json:"ok" yaml:"ok"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// HealthReport lists every check. Status is "ok" only when all passed.
type HealthReport struct {
	Status string        `json:"status" yaml:"status"`
	Checks []HealthCheck `json:"checks" yaml:"checks"`
}

// pageCounter is implemented by mergers that can inspect a PDF.
type pageCounter interface {
	PageCountFile(path string) (int, error)
}

// Health checks the template directories, the converter and, when the
// merger supports it, that every available body PDF can be read.
func (e *Engine) Health(ctx context.Context) HealthReport {
	checks := []HealthCheck{
		{Name: "templates_dir"},
		{Name: "bodies_dir"},
		{Name: "converter"},
		{Name: "bodies_readable"},
	}

	var g errgroup.Group
	g.Go(func() error {
		checks[0] = dirCheck("templates_dir", e.config.TemplatesDir)
		return nil
	})
	g.Go(func() error {
		checks[1] = dirCheck("bodies_dir", e.config.BodiesDir)
		return nil
	})
	g.Go(func() error {
		checks[2] = e.converterCheck(ctx)
		return nil
	})
	g.Go(func() error {
		checks[3] = e.bodiesCheck()
		return nil
	})
	_ = g.Wait()

	report := HealthReport{Status: StatusOK, Checks: checks}
	for _, c := range checks {
		if !c.OK {
			report.Status = StatusWarning
		}
	}
	return report
}

func dirCheck(name, dir string) HealthCheck {
	if !isDir(dir) {
		return HealthCheck{Name: name, Detail: fmt.Sprintf("%s is not a directory", dir)}
	}
	return HealthCheck{Name: name, OK: true, Detail: dir}
}

func (e *Engine) converterCheck(ctx context.Context) HealthCheck {
	c, ok := e.converter.(Checker)
	if !ok {
		return HealthCheck{Name: "converter", OK: true, Detail: "not checkable"}
	}
	if err := c.Check(ctx); err != nil {
		return HealthCheck{Name: "converter", Detail: err.Error()}
	}
	return HealthCheck{Name: "converter", OK: true}
}

func (e *Engine) bodiesCheck() HealthCheck {
	pc, ok := e.merger.(pageCounter)
	if !ok {
		return HealthCheck{Name: "bodies_readable", OK: true, Detail: "not checkable"}
	}
	templates := e.AvailableTemplates()
	for _, t := range templates {
		n, err := pc.PageCountFile(t.BodyPath)
		if err != nil {
			return HealthCheck{Name: "bodies_readable", Detail: fmt.Sprintf("%s: %v", t.BodyPath, err)}
		}
		if n == 0 {
			return HealthCheck{Name: "bodies_readable", Detail: fmt.Sprintf("%s has no pages", t.BodyPath)}
		}
	}
	return HealthCheck{Name: "bodies_readable", OK: true, Detail: fmt.Sprintf("%d templates", len(templates))}
}
