package main

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/madrasahub/madrasa/core"
)

// code policy
var (
	codeMinLen  = 4
	codeMaxSim  = 0.7
	codePattern = regexp.MustCompile(`^[\w-]+$`)
)

type setCodeTarget struct {
	schoolID    string
	principalID string
	teacherID   string
	studentID   string
}

// valid requires exactly one owner; principals also need their school.
func (t setCodeTarget) valid() bool {
	var owners int
	for _, id := range []string{t.principalID, t.teacherID, t.studentID} {
		if id != "" {
			owners++
		}
	}
	if owners != 1 {
		return false
	}
	if t.principalID != "" && t.schoolID == "" {
		return false
	}
	return true
}

// setCode updates a principal's, teacher's or guardian's login code after
// checking the code policy against the owner's name.
func (cli *commandLine) setCode(target setCodeTarget, code string) error {
	ctx := context.Background()
	code = core.CleanString(code)

	switch {
	case target.principalID != "":
		sch, err := cli.schoolRepo.GetSchoolByID(ctx, target.schoolID)
		if err != nil {
			return err
		}
		var found bool
		for i, p := range sch.Principals {
			if p.ID == target.principalID {
				if err = checkCode(code, p.Name); err != nil {
					return err
				}
				sch.Principals[i].Code = code
				found = true
			}
		}
		if !found {
			return fmt.Errorf("principal %s not found in school %s", target.principalID, target.schoolID)
		}
		_, err = cli.schoolRepo.UpdateSchool(ctx, sch)
		return err

	case target.teacherID != "":
		tch, err := cli.teacherRepo.GetTeacherByID(ctx, target.teacherID)
		if err != nil {
			return err
		}
		if err = checkCode(code, tch.Name); err != nil {
			return err
		}
		tch.Code = code
		_, err = cli.teacherRepo.UpdateTeacher(ctx, tch)
		return err

	default:
		std, err := cli.studentRepo.GetStudentByID(ctx, target.studentID)
		if err != nil {
			return err
		}
		if err = checkCode(code, std.Name); err != nil {
			return err
		}
		std.GuardianCode = code
		_, err = cli.studentRepo.UpdateStudent(ctx, std)
		return err
	}
}

// checkCode enforces the code policy:
// - MinimumLength
// - no similarity with the owner's name
func checkCode(code, ownerName string) error {
	if len(code) < codeMinLen {
		return fmt.Errorf("code must contain at least %d characters", codeMinLen)
	}
	if !codePattern.MatchString(code) {
		return fmt.Errorf("code may only contain letters, digits, underscores and dashes")
	}

	sim := difflib.NewMatcher(
		strings.Split(strings.ToLower(code), ""),
		strings.Split(strings.ToLower(ownerName), ""),
	).QuickRatio()
	if sim >= codeMaxSim {
		return fmt.Errorf("code is too similar to the owner's name")
	}
	return nil
}
