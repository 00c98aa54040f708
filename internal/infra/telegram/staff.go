package telegram

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Staff is the set of Telegram users allowed to run review commands.
type Staff map[int64]bool

func NewStaff(ids ...int64) Staff {
	s := make(Staff, len(ids))
	for _, id := range ids {
		if id != 0 {
			s[id] = true
		}
	}
	return s
}

func (s Staff) Allows(id int64) bool { return s[id] }

// IDs returns the members in ascending order.
func (s Staff) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ReviewerID is how a Telegram staff member is recorded on reviews and history.
func ReviewerID(telegramID int64) string {
	return "tg:" + strconv.FormatInt(telegramID, 10)
}

// Callback data for the review buttons: rv_ok_<applicationID>, rv_no_<applicationID>.
const (
	callbackApprove = "rv_ok_"
	callbackReject  = "rv_no_"
)

func approveData(applicationID int64) string {
	return fmt.Sprintf("%s%d", callbackApprove, applicationID)
}

func rejectData(applicationID int64) string {
	return fmt.Sprintf("%s%d", callbackReject, applicationID)
}

// parseReviewCallback splits button data into the decision and application id.
func parseReviewCallback(data string) (decision string, applicationID int64, err error) {
	// telebot prefixes inline data with \f when a unique is set
	data = strings.TrimPrefix(strings.TrimSpace(data), "\f")

	var raw string
	switch {
	case strings.HasPrefix(data, callbackApprove):
		decision, raw = "APPROVED", strings.TrimPrefix(data, callbackApprove)
	case strings.HasPrefix(data, callbackReject):
		decision, raw = "REJECTED", strings.TrimPrefix(data, callbackReject)
	default:
		return "", 0, fmt.Errorf("unhandled callback data: %s", data)
	}

	applicationID, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || applicationID <= 0 {
		return "", 0, fmt.Errorf("invalid application id '%s' in callback", raw)
	}
	return decision, applicationID, nil
}
