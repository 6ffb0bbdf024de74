package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-quoteform/pkg/quote"
)

const (
	actionNext    = "Próximo"
	actionSubmit  = "Enviar pelo WhatsApp"
	actionBack    = "Voltar"
	actionReview  = "Revisar etapa"
	actionContact = "Falar com um consultor"
	actionQuit    = "Sair"

	blankOption = "(deixar em branco)"
)

// lookupWait bounds how long the runner waits for a postal lookup before
// moving on to the address fields.
const lookupWait = 10 * time.Second

// Runner walks a quote controller through the terminal, one step at a time.
type Runner struct {
	driver        PromptDriver
	theme         Theme
	confirmSubmit bool
}

// New constructs a Runner with the survey driver unless overridden.
func New(options ...Option) *Runner {
	r := &Runner{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Run prompts every visible field of the current step, then offers the step
// actions until the visitor submits, asks for contact or quits. It returns the
// dispatched message link.
func (r *Runner) Run(ctx context.Context, ctrl *quote.Controller) (string, error) {
	if ctx == nil {
		return "", errors.New("tui: context is required")
	}
	if ctrl == nil {
		return "", errors.New("tui: controller is required")
	}

	def := ctrl.Definition()
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		view := ctrl.View()
		if err := r.info(ctx, fmt.Sprintf("[%d/%d] %s", view.Step+1, view.Total, view.StepTitle)); err != nil {
			return "", err
		}

		step, _ := def.Step(view.Step)
		for _, f := range step.Fields {
			if !ctrl.Visible(f) {
				continue
			}
			if err := r.promptField(ctx, ctrl, f); err != nil {
				return "", err
			}
		}

		link, done, err := r.promptAction(ctx, ctrl)
		if err != nil || done {
			return link, err
		}
	}
}

func (r *Runner) promptField(ctx context.Context, ctrl *quote.Controller, f quote.Field) error {
	spec, _ := ctrl.Definition().Field(f)
	message := spec.Label
	if spec.Required {
		message += " *"
	}

	var value string
	switch spec.Kind {
	case quote.KindSelect:
		options := ctrl.Options(f)
		if len(options) == 0 {
			return nil
		}
		labels := make([]string, 0, len(options)+1)
		values := make([]string, 0, len(options)+1)
		if !spec.Required {
			labels = append(labels, blankOption)
			values = append(values, "")
		}
		for _, opt := range options {
			labels = append(labels, opt.Label)
			values = append(values, opt.Value)
		}
		current := ctrl.Get(f)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: indexOf(values, current),
			Help:         spec.Guidance,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			return fmt.Errorf("tui: invalid selection %d for %s", idx, f)
		}
		value = values[idx]
	default:
		var validator func(string) error
		if spec.Required {
			guidance := spec.Guidance
			if guidance == "" {
				guidance = "Campo obrigatório."
			}
			validator = func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New(guidance)
				}
				return nil
			}
		}
		input, err := r.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   ctrl.Get(f),
			Help:      spec.Placeholder,
			Validator: validator,
		})
		if err != nil {
			return err
		}
		value = input
	}

	if err := ctrl.SetField(f, value); err != nil {
		return err
	}
	if f == quote.FieldPostalCode {
		waitCtx, cancel := context.WithTimeout(ctx, lookupWait)
		defer cancel()
		if err := ctrl.Await(waitCtx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (r *Runner) promptAction(ctx context.Context, ctrl *quote.Controller) (string, bool, error) {
	view := ctrl.View()
	actions := make([]string, 0, 5)
	if view.IsLast {
		actions = append(actions, actionSubmit)
	} else {
		actions = append(actions, actionNext)
	}
	if !view.IsFirst {
		actions = append(actions, actionBack)
	}
	actions = append(actions, actionReview, actionContact, actionQuit)

	idx, err := r.driver.Select(ctx, SelectConfig{Message: "O que deseja fazer?", Options: actions})
	if err != nil {
		return "", false, err
	}
	if idx < 0 || idx >= len(actions) {
		return "", false, fmt.Errorf("tui: invalid action %d", idx)
	}

	switch actions[idx] {
	case actionNext:
		if !ctrl.Advance() {
			return "", false, r.guidance(ctx, ctrl.View())
		}
	case actionSubmit:
		if !ctrl.CanSubmit() {
			return "", false, r.guidance(ctx, view)
		}
		if r.confirmSubmit {
			ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Enviar a cotação agora?", Default: true})
			if err != nil {
				return "", false, err
			}
			if !ok {
				return "", false, nil
			}
		}
		link, err := ctrl.Submit(ctx)
		if errors.Is(err, quote.ErrSubmitBlocked) {
			return "", false, r.guidance(ctx, ctrl.View())
		}
		return link, err == nil, err
	case actionBack:
		ctrl.Retreat()
	case actionContact:
		link, err := ctrl.Contact(ctx)
		return link, err == nil, err
	case actionQuit:
		return "", true, ErrAborted
	}
	return "", false, nil
}

func (r *Runner) guidance(ctx context.Context, view quote.View) error {
	for _, line := range view.Guidance {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}
