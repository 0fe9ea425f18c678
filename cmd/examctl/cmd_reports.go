package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/certhub/examdesk/internal/models"
	"github.com/certhub/examdesk/internal/services"
)

func heading(w io.Writer, text string) {
	color.New(color.FgCyan, color.Bold).Fprintf(w, "\n=== %s ===\n", text)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	return t
}

func roomsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "Room occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, sum, err := a.svc.RoomOccupancy(cmd.Context())
			if err != nil {
				return err
			}
			w := out(cmd)
			heading(w, "Phòng thi")
			t := newTable(w, "ID", "Phòng", "Toà nhà", "Sức chứa", "Đã xếp", "Còn trống", "%", "Trạng thái")
			for _, r := range rows {
				t.Append([]string{
					strconv.FormatUint(uint64(r.RoomID), 10),
					r.Name,
					r.Building,
					strconv.Itoa(r.Capacity),
					strconv.FormatInt(r.Assigned, 10),
					strconv.Itoa(r.Available),
					strconv.Itoa(r.FillPercent),
					r.Status,
				})
			}
			t.SetFooter([]string{"", fmt.Sprintf("%d phòng", sum.Rooms), "", strconv.Itoa(sum.Capacity),
				strconv.FormatInt(sum.Assigned, 10), "", "", fmt.Sprintf("%d đầy", sum.Full)})
			t.Render()
			if sum.Full > 0 {
				color.New(color.FgRed).Fprintf(w, "%d phòng đã đủ chỗ\n", sum.Full)
			}
			return nil
		},
	}
}

func rosterCmd(a *app) *cobra.Command {
	var f services.RosterFilter
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Ticket roster with candidate and room",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.svc.TicketRoster(cmd.Context(), f)
			if err != nil {
				return err
			}
			w := out(cmd)
			heading(w, "Danh sách dự thi")
			t := newTable(w, "SBD", "Thí sinh", "Khách hàng", "Chứng chỉ", "Ca thi", "Phòng", "Gia hạn")
			for _, v := range list {
				when := ""
				if v.ScheduledAt != nil {
					when = v.ScheduledAt.In(a.loc).Format("02/01/2006 15:04")
				}
				room := v.RoomName
				if v.RoomID == nil {
					room = "-"
				}
				t.Append([]string{v.CandidateNumber, v.CandidateName, v.CustomerName, v.Certificate,
					when, room, strconv.Itoa(v.ExtensionCount)})
			}
			t.Render()
			fmt.Fprintf(w, "%d thí sinh\n", len(list))
			return nil
		},
	}
	cmd.Flags().UintVar(&f.SessionID, "session", 0, "only this session")
	cmd.Flags().UintVar(&f.RoomID, "room", 0, "only this room")
	cmd.Flags().BoolVar(&f.Unassigned, "unassigned", false, "only tickets without a room")
	cmd.Flags().StringVarP(&f.Q, "query", "q", "", "search number, candidate or customer")
	return cmd
}

func upcomingCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Sessions that are not yet held",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			list, err := a.svc.UpcomingSessions(cmd.Context(), now, now.AddDate(0, 0, days))
			if err != nil {
				return err
			}
			w := out(cmd)
			heading(w, fmt.Sprintf("Ca thi trong %d ngày tới", days))
			t := newTable(w, "ID", "Chứng chỉ", "Thời gian", "Địa điểm", "Số chỗ")
			for _, s := range list {
				t.Append([]string{strconv.FormatUint(uint64(s.ID), 10), certCode(s),
					s.ScheduledAt.In(a.loc).Format("02/01/2006 15:04"), s.Location, strconv.Itoa(s.Seats)})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 14, "look-ahead in days")
	return cmd
}

func certCode(s models.ExamSession) string {
	if s.Certificate == nil {
		return ""
	}
	return s.Certificate.Code
}

func ledgerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Certificate ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.svc.CertificateLedgerReport(cmd.Context())
			if err != nil {
				return err
			}
			w := out(cmd)
			heading(w, "Sổ cấp chứng chỉ")
			t := newTable(w, "SBD", "Thí sinh", "Chứng chỉ", "Điểm", "Kết quả", "Trạng thái", "Ngày ghi")
			passed := 0
			for _, r := range rows {
				verdict := "Không đạt"
				if r.Passed {
					verdict = "Đạt"
					passed++
				}
				t.Append([]string{r.CandidateNumber, r.CandidateName, r.Certificate,
					strconv.FormatFloat(r.Score, 'f', -1, 64), verdict, r.CertificateStatus,
					r.RecordedAt.In(a.loc).Format("02/01/2006")})
			}
			t.Render()
			color.New(color.FgGreen).Fprintf(w, "%d/%d đạt\n", passed, len(rows))
			return nil
		},
	}
}
