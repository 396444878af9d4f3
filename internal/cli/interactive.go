package cli

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/syssam/crudify/schema"
)

// asker asks one question; survey.AskOne in production.
type asker func(p survey.Prompt, response any, opts ...survey.AskOpt) error

var askOne asker = survey.AskOne

// choose asks which tables to scaffold and, for each of them, which verbs
// to generate. It returns a new project; p is not modified.
func choose(p *schema.Project, ask asker) (*schema.Project, error) {
	names := make([]string, len(p.Tables))
	for i, t := range p.Tables {
		names[i] = t.Name()
	}
	var picked []string
	err := ask(&survey.MultiSelect{
		Message: "Tables to scaffold:",
		Options: names,
		Default: names,
	}, &picked, survey.WithValidator(survey.MinItems(1)))
	if err != nil {
		return nil, err
	}

	verbs := make([]string, len(schema.AllVerbs))
	for i, v := range schema.AllVerbs {
		verbs[i] = string(v)
	}
	tables := make([]*schema.Table, 0, len(picked))
	for _, name := range picked {
		t, ok := p.Table(name)
		if !ok {
			return nil, fmt.Errorf("unknown table %q", name)
		}
		var current []string
		for _, v := range t.Verbs() {
			if v.Generate {
				current = append(current, string(v.Name))
			}
		}
		var chosen []string
		err := ask(&survey.MultiSelect{
			Message: fmt.Sprintf("Verbs for %s:", name),
			Options: verbs,
			Default: current,
		}, &chosen)
		if err != nil {
			return nil, err
		}
		if len(chosen) == 0 {
			return nil, errors.New("no verbs selected for " + name)
		}
		set := make(map[string]bool, len(chosen))
		for _, c := range chosen {
			set[c] = true
		}
		vs := make([]schema.Verb, len(schema.AllVerbs))
		for i, v := range schema.AllVerbs {
			vs[i] = schema.Verb{Name: v, Generate: set[string(v)]}
		}
		nt, err := t.WithVerbs(vs...)
		if err != nil {
			return nil, err
		}
		tables = append(tables, nt)
	}
	return schema.NewProject(p.Name, p.APIURL, tables...)
}
