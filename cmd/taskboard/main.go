package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/kshimizu/taskboard/internal/board"
	"github.com/kshimizu/taskboard/internal/client"
)

var (
	app    = kingpin.New("taskboard", "Kanban board with a dynamic stage catalog")
	addr   = app.Flag("addr", "Server base URL").Default("http://localhost:3200").Envar("TASKBOARD_ADDR").String()
	apiKey = app.Flag("api-key", "API key").Envar("TASKBOARD_API_KEY").String()

	boardCmd = app.Command("board", "Show the board")

	// Stage commands
	stageCmd = app.Command("stage", "Stage management commands")

	stageListCmd = stageCmd.Command("list", "List stages in board order")

	stageCreateCmd   = stageCmd.Command("create", "Create a stage")
	stageCreateName  = stageCreateCmd.Arg("name", "Stage display name").Required().String()
	stageCreateColor = stageCreateCmd.Flag("color", "Stage color name").Default("purple").String()

	stageDeleteCmd = stageCmd.Command("delete", "Delete an empty stage")
	stageDeleteID  = stageDeleteCmd.Arg("id", "Stage ID").Required().String()

	// Task commands
	taskCmd = app.Command("task", "Task management commands")

	taskListCmd     = taskCmd.Command("list", "List tasks")
	taskListProject = taskListCmd.Flag("project", "Filter by project ID").String()
	taskListStage   = taskListCmd.Flag("stage", "Filter by stage key").String()

	taskCreateCmd     = taskCmd.Command("create", "Create a task")
	taskCreateTitle   = taskCreateCmd.Arg("title", "Task title").Required().String()
	taskCreateDesc    = taskCreateCmd.Flag("description", "Task description").Required().String()
	taskCreateProject = taskCreateCmd.Flag("project", "Project ID").String()
	taskCreateStage   = taskCreateCmd.Flag("stage", "Initial stage key").String()

	// Move commands
	moveCmd      = app.Command("move", "Propose a stage move and confirm it interactively")
	moveTaskID   = moveCmd.Arg("id", "Task ID").Required().String()
	moveStageKey = moveCmd.Arg("stage", "Target stage key").Required().String()
	moveYes      = moveCmd.Flag("yes", "Confirm without prompting").Short('y').Bool()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(*addr, *apiKey)

	var err error
	switch command {
	case boardCmd.FullCommand():
		err = handleBoard(ctx, c)
	case stageListCmd.FullCommand():
		err = handleStageList(ctx, c)
	case stageCreateCmd.FullCommand():
		err = handleStageCreate(ctx, c, *stageCreateName, *stageCreateColor)
	case stageDeleteCmd.FullCommand():
		err = handleStageDelete(ctx, c, *stageDeleteID)
	case taskListCmd.FullCommand():
		err = handleTaskList(ctx, c, *taskListProject, *taskListStage)
	case taskCreateCmd.FullCommand():
		err = handleTaskCreate(ctx, c, *taskCreateProject, *taskCreateTitle, *taskCreateDesc, *taskCreateStage)
	case moveCmd.FullCommand():
		err = handleMove(ctx, c, *moveTaskID, *moveStageKey, *moveYes)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func handleBoard(ctx context.Context, c *client.Client) error {
	stages, items, err := c.Board(ctx)
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	for _, s := range stages {
		bold.Printf("%s (%d)\n", s.Name, len(items[s.Key]))
		for _, t := range items[s.Key] {
			fmt.Printf("  %s  %s  %d%%\n", t.ID, t.Title, t.Progress)
		}
	}
	return nil
}

func handleStageList(ctx context.Context, c *client.Client) error {
	stages, err := c.ListStages(ctx)
	if err != nil {
		return err
	}
	for _, s := range stages {
		fmt.Printf("%-28s  %-16s  %-8s  %s\n", s.ID, s.Key, s.ColorName, s.Name)
	}
	return nil
}

func handleStageCreate(ctx context.Context, c *client.Client, name, colorName string) error {
	s, err := c.CreateStage(ctx, name, colorName)
	if err != nil {
		return err
	}
	color.Green("Created stage %s (key %s)", s.Name, s.Key)
	return nil
}

func handleStageDelete(ctx context.Context, c *client.Client, id string) error {
	if err := c.DeleteStage(ctx, id); err != nil {
		return err
	}
	color.Green("Deleted stage %s", id)
	return nil
}

func handleTaskList(ctx context.Context, c *client.Client, projectID, stageKey string) error {
	tasks, err := c.ListTasks(ctx, projectID, stageKey)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		fmt.Printf("%-28s  %-12s  %3d%%  %s\n", t.ID, t.StageKey, t.Progress, t.Title)
	}
	return nil
}

func handleTaskCreate(ctx context.Context, c *client.Client, projectID, title, description, stageKey string) error {
	t, err := c.CreateTask(ctx, projectID, title, description, stageKey)
	if err != nil {
		return err
	}
	color.Green("Created task %s in %s", t.ID, t.StageKey)
	return nil
}

func handleMove(ctx context.Context, c *client.Client, taskID, stageKey string, yes bool) error {
	move, err := c.ProposeMove(ctx, taskID, stageKey)
	if err != nil {
		return err
	}

	if !yes {
		fmt.Printf("%s [y/N]: ", move.Prompt)
		var answer string
		if _, err := fmt.Scanln(&answer); err != nil || (answer != "y" && answer != "Y") {
			if err := c.CancelMove(ctx, move.Token); err != nil {
				return err
			}
			color.Yellow("Move cancelled")
			return nil
		}
	}

	result, err := c.ConfirmMove(ctx, move.Token)
	if err != nil {
		return err
	}
	color.Green("Moved %q to %s (%d%%)", result.Item.Title, result.Item.StageKey, result.Item.Progress)
	printAggregate(result.From)
	printAggregate(result.To)
	return nil
}

func printAggregate(a board.Aggregate) {
	fmt.Printf("  %s: %d tasks, %.1fh estimated\n", a.StageKey, a.Count, a.EstimatedHours)
}
