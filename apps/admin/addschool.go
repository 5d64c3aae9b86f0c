package main

import (
	"context"
	"fmt"
	"time"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/school"
)

// addSchool registers a new school with the given stages enabled.
func (cli *commandLine) addSchool(name string, stages []string) error {
	ctx := context.Background()
	name = core.CleanString(name)

	cleaned := make([]string, 0, len(stages))
	for _, stage := range stages {
		stage = core.CleanString(stage, true /* lower */)
		var known bool
		for _, s := range core.Stages {
			if stage == s {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown stage %q", stage)
		}
		cleaned = append(cleaned, stage)
	}

	sch, err := cli.schoolRepo.CreateSchool(ctx, school.School{
		Name:      name,
		Active:    true,
		Stages:    cleaned,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	logger.Printf("school %q registered with id %s", sch.Name, sch.ID)
	return nil
}
