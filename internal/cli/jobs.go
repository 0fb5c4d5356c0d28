package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"huntx-client/internal/api"
	"huntx-client/internal/app"
	"huntx-client/internal/models"
)

func newJobsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse, post and apply for jobs",
	}
	cmd.AddCommand(
		newJobsListCmd(opts),
		newJobsShowCmd(opts),
		newJobsFeaturedCmd(opts),
		newJobsApplyCmd(opts),
		newJobsApplicationsCmd(opts),
		newJobsPostCmd(opts),
		newJobsMineCmd(opts),
		newJobsStatusCmd(opts),
	)
	return cmd
}

func newJobsListCmd(opts *options) *cobra.Command {
	var filter models.JobFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search job listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				page, err := a.Jobs.List(ctx, filter)
				if err != nil {
					return err
				}
				printJobs(cmd, page.Jobs)
				printf(cmd, "\npage %d of %d (%d jobs)\n", page.Page, page.TotalPages(), page.Total)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "title or keyword")
	cmd.Flags().StringVarP(&filter.JobType, "type", "t", "", "job type, e.g. Full-time")
	cmd.Flags().StringVarP(&filter.Location, "location", "l", "", "location")
	cmd.Flags().StringVar(&filter.Company, "company", "", "company name")
	cmd.Flags().IntVarP(&filter.Page, "page", "p", models.DefaultJobPage, "page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", models.DefaultJobLimit, "jobs per page")
	return cmd
}

func newJobsShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				job, err := a.Jobs.Get(ctx, args[0])
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				printfTo(w, "title\t%s\n", job.Title)
				printfTo(w, "company\t%s\n", job.Company)
				printfTo(w, "location\t%s\n", orDash(job.Location))
				printfTo(w, "type\t%s\n", orDash(job.JobType))
				printfTo(w, "salary\t%s\n", orDash(job.Salary))
				printfTo(w, "posted\t%s\n", ago(job.CreatedAt))
				if applied, err := a.Jobs.HasApplied(ctx, job.ID); err == nil && applied {
					printfTo(w, "applied\tyes\n")
				}
				if err := w.Flush(); err != nil {
					return err
				}
				if job.Description != "" {
					printf(cmd, "\n%s\n", job.Description)
				}
				return nil
			})
		},
	}
}

func newJobsFeaturedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "Featured jobs and top companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				featured, err := a.Jobs.Featured(ctx)
				if err != nil {
					return err
				}
				companies, err := a.Jobs.TopCompanies(ctx)
				if err != nil {
					return err
				}
				printJobs(cmd, featured)
				w := table(cmd.OutOrStdout())
				printfTo(w, "\nCOMPANY\tJOBS\n")
				for _, c := range companies {
					printfTo(w, "%s\t%d\n", c.Name, c.JobCount)
				}
				return w.Flush()
			})
		},
	}
}

func newJobsApplyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply for a job (job seekers)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				if err := a.Jobs.Apply(ctx, args[0]); err != nil {
					return err
				}
				printf(cmd, "applied for %s\n", args[0])
				return nil
			})
		},
	}
}

func newJobsApplicationsCmd(opts *options) *cobra.Command {
	var employer bool
	cmd := &cobra.Command{
		Use:   "applications",
		Short: "Your applications, or applications to your jobs with --employer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				load := a.Jobs.MyApplications
				if employer {
					load = a.Jobs.EmployerApplications
				}
				apps, err := load(ctx)
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				printfTo(w, "ID\tJOB\tCOMPANY\tAPPLICANT\tSTATUS\tAT\n")
				for _, ap := range apps {
					printfTo(w, "%s\t%s\t%s\t%s\t%s\t%s\n", ap.ID, ap.Job.Title, orDash(ap.Job.Company), orDash(ap.Applicant.Name), ap.Status, ago(ap.CreatedAt))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&employer, "employer", false, "list applications to the jobs you posted")
	return cmd
}

func newJobsPostCmd(opts *options) *cobra.Command {
	var job api.NewJob
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a job listing (employers)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				msg, err := a.Jobs.Post(ctx, job)
				if err != nil {
					return err
				}
				printf(cmd, "%s\n", orDash(msg))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&job.Title, "title", "", "job title")
	cmd.Flags().StringVar(&job.Company, "company", "", "company name")
	cmd.Flags().StringVar(&job.Location, "location", "", "location")
	cmd.Flags().StringVar(&job.JobType, "type", "", "job type")
	cmd.Flags().StringVar(&job.Salary, "salary", "", "salary range")
	cmd.Flags().StringVar(&job.Description, "description", "", "description")
	return cmd
}

func newJobsMineCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Listings you posted (employers)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				list, err := a.Jobs.MyJobs(ctx)
				if err != nil {
					return err
				}
				printJobs(cmd, list)
				return nil
			})
		},
	}
}

func newJobsStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <application-id> <Pending|Accepted|Rejected>",
		Short: "Decide on an application (employers)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				status, err := a.Jobs.UpdateApplicationStatus(ctx, args[0], models.ApplicationStatus(args[1]))
				if err != nil {
					return err
				}
				printf(cmd, "%s %s\n", args[0], status)
				return nil
			})
		},
	}
}

func printJobs(cmd *cobra.Command, list []models.Job) {
	w := table(cmd.OutOrStdout())
	printfTo(w, "ID\tTITLE\tCOMPANY\tLOCATION\tTYPE\n")
	for _, job := range list {
		printfTo(w, "%s\t%s\t%s\t%s\t%s\n", job.ID, job.Title, job.Company, orDash(job.Location), orDash(job.JobType))
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
}
