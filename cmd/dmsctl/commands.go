package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/dms-admin/internal/domain/listing"
	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
	"github.com/bigkaa/goartstore/dms-admin/internal/service"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

func newOTPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "otp <mobile>",
		Short: "Запросить одноразовый пароль",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.auth.RequestOTP(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <mobile> <otp>",
		Short: "Проверить OTP и сохранить токен",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.auth.VerifyOTP(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.tokens.Set(cmd.Context(), cliSession, token); err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
				"Вход выполнен (user_id: %s), токен сохранён в %s\n", session.UserID(token), a.tokens.Path())
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Удалить сохранённый токен",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.logout(cmd.Context())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Выход выполнен")
			return nil
		},
	}
}

// filterFlags — флаги фильтра поиска.
func filterFlags(cmd *cobra.Command, f *model.SearchFilter) {
	flags := cmd.Flags()
	flags.StringVar(&f.MajorHead, "major", "", "категория: Personal или Professional")
	flags.StringVar(&f.MinorHead, "minor", "", "имя или отдел")
	flags.StringVar(&f.TagsText, "tags", "", "теги через запятую")
	flags.StringVar(&f.FromDate, "from", "", "начало диапазона дат (YYYY-MM-DD)")
	flags.StringVar(&f.ToDate, "to", "", "конец диапазона дат (YYYY-MM-DD)")
	flags.StringVarP(&f.SearchText, "query", "q", "", "поисковый запрос")
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		f    model.SearchFilter
		page int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Найти документы и показать страницу результатов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, err := a.credential(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := a.search.Search(cmd.Context(), cred, f); err != nil {
				return err
			}
			state, err := a.search.Page(cmd.Context(), cred, page)
			if err != nil {
				return err
			}
			printPage(cmd.OutOrStdout(), service.View(state))
			return nil
		},
	}
	filterFlags(cmd, &f)
	cmd.Flags().IntVar(&page, "page", 1, "номер страницы")
	return cmd
}

func newTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags [term]",
		Short: "Подсказки тегов",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := a.credential(cmd.Context())
			if err != nil {
				return err
			}
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			tags, err := a.tags.Suggest(cmd.Context(), cred, term)
			if err != nil {
				return err
			}
			for _, t := range tags {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func newArchiveCmd(a *app) *cobra.Command {
	var (
		f      model.SearchFilter
		output string
	)
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Скачать все найденные документы одним zip-архивом",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, err := a.credential(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := a.search.Search(cmd.Context(), cred, f); err != nil {
				return err
			}
			archive, err := a.archives.Build(cmd.Context(), cred)
			if err != nil {
				return err
			}

			if output == "" {
				output = archive.Filename
			}
			if err := os.WriteFile(output, archive.Data, 0o600); err != nil {
				return fmt.Errorf("запись архива: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = color.New(color.FgGreen).Fprintf(out, "Архив %s: %d из %d файлов\n", output, archive.Entries, archive.Total)
			if archive.Skipped() > 0 {
				_, _ = color.New(color.FgYellow).Fprintf(out, "Пропущено записей: %d\n", archive.Skipped())
			}
			return nil
		},
	}
	filterFlags(cmd, &f)
	cmd.Flags().StringVarP(&output, "output", "o", "", "файл архива (по умолчанию documents-<ms>.zip)")
	return cmd
}

// pageSizeHint — подсказка под таблицей.
func pageSizeHint(view service.PageView) string {
	if view.Total == 0 {
		return "Документы не найдены"
	}
	first := (view.Page-1)*listing.PageSize + 1
	return fmt.Sprintf("Записи %d-%d из %d", first, first+len(view.Rows)-1, view.Total)
}
