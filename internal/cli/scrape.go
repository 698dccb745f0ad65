package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"
)

// NewScrapeCmd создаёт группу команд для управления scrape-задачами.
func NewScrapeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Manage scrape tasks",
	}

	cmd.AddCommand(
		newScrapeStartCmd(clientFn, outputFn),
		newScrapeStatusCmd(clientFn, outputFn),
		newScrapeLogsCmd(clientFn, outputFn),
	)

	return cmd
}

func newScrapeStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var username, password, captchaKey, webhook string
	var follow bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new scrape task",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			accepted, err := client.StartScrape(StartScrapeRequest{
				Username:       username,
				Password:       password,
				CaptchaAPIKey:  captchaKey,
				DiscordWebhook: webhook,
			})
			if err != nil {
				return err
			}

			out.Success("Scrape task started: " + accepted.TaskID)

			if !follow {
				out.Print(
					[]string{"TASK_ID", "STATUS"},
					[][]string{{accepted.TaskID, accepted.Status}},
					accepted,
				)
				return nil
			}

			return followLogs(client, out, accepted.TaskID)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "DULMS username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "DULMS password (required)")
	cmd.Flags().StringVar(&captchaKey, "captcha-key", "", "Anti-Captcha API key (required)")
	cmd.Flags().StringVar(&webhook, "webhook", "", "Discord webhook URL for notifications")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream task logs until completion")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("captcha-key")

	return cmd
}

func newScrapeStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status TASK_ID",
		Short: "Show scrape task status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			status, err := client.GetTaskStatus(args[0])
			if err != nil {
				return err
			}

			if out.jsonMode {
				out.JSON(status)
				return nil
			}

			out.Line("Task:    %s", status.TaskID)
			out.Line("Status:  %s", status.Status)
			if status.Message != "" {
				out.Line("Message: %s", status.Message)
			}

			if len(status.Assignments) > 0 {
				out.Line("")
				out.Line("Assignments:")
				printRecords(out, status.Assignments)
			}
			if len(status.Quizzes) > 0 {
				out.Line("")
				out.Line("Quizzes:")
				printRecords(out, status.Quizzes)
			}

			return nil
		},
	}

	return cmd
}

func newScrapeLogsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs TASK_ID",
		Short: "Stream scrape task logs until completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return followLogs(clientFn(), outputFn(), args[0])
		},
	}

	return cmd
}

// followLogs печатает события SSE-стрима до завершения задачи.
func followLogs(client *Client, out *Output, taskID string) error {
	return client.StreamTaskLogs(taskID, func(event StreamEvent) error {
		switch event.Name {
		case "log":
			var entry LogEventResponse
			if err := json.Unmarshal(event.Data, &entry); err != nil {
				return nil // битое событие пропускаем
			}
			out.Line("%s [%s] %s", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Message)

		case "status":
			var st struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(event.Data, &st); err == nil {
				out.Success("Task finished: " + st.Status)
			}

		case "result":
			if out.jsonMode {
				out.JSON(event.Data)
				return nil
			}
			var result TaskStatusResponse
			if err := json.Unmarshal(event.Data, &result); err == nil {
				if len(result.Assignments) > 0 {
					out.Line("")
					out.Line("Assignments:")
					printRecords(out, result.Assignments)
				}
				if len(result.Quizzes) > 0 {
					out.Line("")
					out.Line("Quizzes:")
					printRecords(out, result.Quizzes)
				}
			}
		}
		return nil
	})
}

func printRecords(out *Output, records []RecordResponse) {
	headers := []string{"ID", "TITLE", "COURSE", "DEADLINE", "DAYS", "STATUS"}
	rows := make([][]string, len(records))
	for i, r := range records {
		days := "-"
		if r.DaysRemaining != nil {
			days = strconv.Itoa(*r.DaysRemaining)
		}
		rows[i] = []string{r.ID, r.Title, r.Course, r.Deadline, days, r.Status}
	}
	out.Table(headers, rows)
}
