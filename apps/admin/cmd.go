package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addschool -name NAME -stages STAGE[,STAGE...] - register a new school")
	fmt.Println("  setcode -principal ID -school SCHOOLID | -teacher ID | -student ID - set a login code (prompted)")
	fmt.Println("  seed - load demo data into the store")
	fmt.Println("  migrate COMMAND [args] - run a goose migration command")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addSchoolCmd := flag.NewFlagSet("addschool", flag.ExitOnError)
	addSchoolName := addSchoolCmd.String("name", "", "The school's name.")
	addSchoolStages := addSchoolCmd.String("stages", "", "Comma-separated stages: kindergarten,primary,middle,secondary.")

	setCodeCmd := flag.NewFlagSet("setcode", flag.ExitOnError)
	setCodeSchool := setCodeCmd.String("school", "", "The school's ID; required with -principal.")
	setCodePrincipal := setCodeCmd.String("principal", "", "The principal's ID. The code will be prompted next.")
	setCodeTeacher := setCodeCmd.String("teacher", "", "The teacher's ID. The code will be prompted next.")
	setCodeStudent := setCodeCmd.String("student", "", "The student's ID. The guardian code will be prompted next.")

	switch args[1] {
	case "addschool":
		if err := addSchoolCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addSchoolName == "" || *addSchoolStages == "" {
			addSchoolCmd.Usage()
			return errHelp
		}
		return cli.addSchool(*addSchoolName, strings.Split(*addSchoolStages, ","))
	case "setcode":
		if err := setCodeCmd.Parse(args[2:]); err != nil {
			return err
		}
		target := setCodeTarget{
			schoolID:    *setCodeSchool,
			principalID: *setCodePrincipal,
			teacherID:   *setCodeTeacher,
			studentID:   *setCodeStudent,
		}
		if !target.valid() {
			setCodeCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter code:")
		code, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(code) == 0 {
			setCodeCmd.Usage()
			return errHelp
		}
		return cli.setCode(target, string(code))
	case "seed":
		return cli.seed()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
