package terminal

import (
	"fmt"
	"strings"

	"github.com/moasaja/moasaja/api"
)

const dateLayout = "2006-01-02 15:04"

// ConsoleFormatter renders API results as trees for console display
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// branch returns the item prefix and the indent for its detail lines
func branch(isLast bool) (string, string) {
	if isLast {
		return "╰", "    "
	}
	return "├", "│   "
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func formatDate(t api.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(dateLayout)
}

// FormatPostList formats a page of posts
func (f *ConsoleFormatter) FormatPostList(posts []api.Post, total int) string {
	if len(posts) == 0 {
		return "No posts found"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s (%d", plural("Post", len(posts)), len(posts))
	if total > len(posts) {
		fmt.Fprintf(&sb, " of %d", total)
	}
	sb.WriteString("):\n\n")

	for i := range posts {
		isLast := i == len(posts)-1
		f.formatPost(&sb, &posts[i], isLast)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatPost formats a single post with its description
func (f *ConsoleFormatter) FormatPost(post *api.Post) string {
	var sb strings.Builder
	sb.WriteString("\n")
	f.formatPost(&sb, post, true)
	if post.Description != "" {
		fmt.Fprintf(&sb, "    %s\n", strings.ReplaceAll(post.Description, "\n", "\n    "))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (f *ConsoleFormatter) formatPost(sb *strings.Builder, post *api.Post, isLast bool) {
	prefix, indent := branch(isLast)

	fmt.Fprintf(sb, "%s── [%s] %s", prefix, post.PostID, post.Title)
	var badges []string
	if post.IsUrgent {
		badges = append(badges, "urgent")
	}
	if post.IsNew {
		badges = append(badges, "new")
	}
	if post.IsWishlisted {
		badges = append(badges, "wishlisted")
	}
	if len(badges) > 0 {
		fmt.Fprintf(sb, " (%s)", strings.Join(badges, ", "))
	}
	sb.WriteString("\n")

	details := []string{
		fmt.Sprintf("%s won/person", post.PerPerson().StringFixed(0)),
		fmt.Sprintf("%d/%d joined", post.CurrentParticipants, post.TargetParticipants),
	}
	if post.Status != "" {
		details = append(details, string(post.Status))
	}
	if post.PostType != "" {
		details = append(details, post.PostType)
	}
	fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(details, " | "))

	var where []string
	if post.PickupLocationText != "" {
		where = append(where, "Pickup: "+post.PickupLocationText)
	}
	if d := formatDate(post.PickupDatetime); d != "" {
		where = append(where, "At: "+d)
	}
	if d := formatDate(post.EndDate); d != "" {
		where = append(where, "Ends: "+d)
	}
	if len(where) > 0 {
		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(where, " | "))
	}

	if name := post.AuthorName(); name != "" {
		fmt.Fprintf(sb, "%sBy: %s\n", indent, name)
	}
}

// FormatComments formats comments with replies nested under their parent
func (f *ConsoleFormatter) FormatComments(comments []api.Comment) string {
	if len(comments) == 0 {
		return "No comments yet"
	}

	var roots []api.Comment
	replies := make(map[api.ID][]api.Comment)
	known := make(map[api.ID]bool, len(comments))
	for _, c := range comments {
		known[c.CommentID] = true
	}
	for _, c := range comments {
		// orphaned replies are shown at the top level
		if c.ParentCommentID != nil && known[*c.ParentCommentID] {
			replies[*c.ParentCommentID] = append(replies[*c.ParentCommentID], c)
			continue
		}
		roots = append(roots, c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%d):\n\n", plural("Comment", len(comments)), len(comments))

	for i, c := range roots {
		isLast := i == len(roots)-1
		prefix, indent := branch(isLast)

		fmt.Fprintf(&sb, "%s── %s\n", prefix, commentLine(c))
		for j, r := range replies[c.CommentID] {
			replyPrefix, _ := branch(j == len(replies[c.CommentID])-1)
			fmt.Fprintf(&sb, "%s%s── %s\n", indent, replyPrefix, commentLine(r))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func commentLine(c api.Comment) string {
	line := fmt.Sprintf("[%s] %s: %s", c.CommentID, c.Nickname, c.Content)
	if d := formatDate(c.CreatedAt); d != "" {
		line += " (" + d + ")"
	}
	return line
}

// FormatReviews formats reviews with a star rating
func (f *ConsoleFormatter) FormatReviews(reviews []api.Review) string {
	if len(reviews) == 0 {
		return "No reviews yet"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%d):\n\n", plural("Review", len(reviews)), len(reviews))

	for i, r := range reviews {
		isLast := i == len(reviews)-1
		prefix, indent := branch(isLast)

		stars := strings.Repeat("★", r.Rating) + strings.Repeat("☆", max(5-r.Rating, 0))
		title := r.PostTitle
		if title == "" {
			title = "post " + r.PostID.String()
		}
		fmt.Fprintf(&sb, "%s── %s %s\n", prefix, stars, title)

		if r.Comment != "" {
			fmt.Fprintf(&sb, "%s%s\n", indent, r.Comment)
		}

		var parts []string
		if r.Reviewer != nil && r.Reviewer.Nickname != "" {
			parts = append(parts, "From: "+r.Reviewer.Nickname)
		}
		if r.Receiver != nil && r.Receiver.Nickname != "" {
			parts = append(parts, "To: "+r.Receiver.Nickname)
		}
		if d := formatDate(r.CreatedAt); d != "" {
			parts = append(parts, d)
		}
		if len(parts) > 0 {
			fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(parts, " | "))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatMatching formats matching entries
func (f *ConsoleFormatter) FormatMatching(entries []api.MatchingEntry) string {
	history := make([]api.HistoryEntry, len(entries))
	for i, e := range entries {
		history[i] = api.HistoryEntry{MatchingEntry: e, Type: api.HistoryMatching}
	}
	return f.FormatHistory(&api.History{Entries: history})
}

// FormatHistory formats the merged participation history
func (f *ConsoleFormatter) FormatHistory(history *api.History) string {
	var sb strings.Builder

	if len(history.Entries) == 0 {
		sb.WriteString("No history found\n")
	} else {
		fmt.Fprintf(&sb, "\nHistory (%d):\n\n", len(history.Entries))
	}

	for i, e := range history.Entries {
		isLast := i == len(history.Entries)-1
		prefix, indent := branch(isLast)

		fmt.Fprintf(&sb, "%s── [%s] %s\n", prefix, e.PostID, e.Title)

		details := []string{string(e.Type)}
		if e.Status != "" {
			details = append(details, string(e.Status))
		}
		if !e.PerPersonPrice.IsZero() {
			details = append(details, e.PerPersonPrice.StringFixed(0)+" won/person")
		}
		if e.TargetParticipants > 0 {
			details = append(details, fmt.Sprintf("%d/%d joined", e.CurrentParticipants, e.TargetParticipants))
		}
		fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(details, " | "))

		if d := formatDate(e.CreatedAt); d != "" {
			fmt.Fprintf(&sb, "%sSince: %s\n", indent, d)
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	if len(history.Unavailable) > 0 {
		var names []string
		for _, u := range history.Unavailable {
			names = append(names, string(u))
		}
		fmt.Fprintf(&sb, "\n%s\n", warningStyle.Render("Unavailable: "+strings.Join(names, ", ")))
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatMatchingSummary formats matching counts per status
func (f *ConsoleFormatter) FormatMatchingSummary(s *api.MatchingSummary) string {
	var sb strings.Builder
	sb.WriteString("\nMatching:\n\n")
	fmt.Fprintf(&sb, "├── All: %d\n", s.All)
	fmt.Fprintf(&sb, "├── Waiting: %d\n", s.Waiting)
	fmt.Fprintf(&sb, "├── Success: %d\n", s.Success)
	fmt.Fprintf(&sb, "╰── Closed: %d\n", s.Closed)
	sb.WriteString("\n")
	return sb.String()
}

// FormatUser formats a profile
func (f *ConsoleFormatter) FormatUser(u *api.User) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s [%s]\n", u.GetDisplayName(), u.UserID)

	lines := []string{"Email: " + u.Email}
	if u.PhoneNumber != "" {
		lines = append(lines, "Phone: "+u.PhoneNumber)
	}
	if u.ProfileImageURL != "" {
		lines = append(lines, "Image: "+u.ProfileImageURL)
	}
	if u.IsFallback {
		lines = append(lines, warningStyle.Render("Cached profile, server unavailable"))
	}
	for i, line := range lines {
		prefix, _ := branch(i == len(lines)-1)
		fmt.Fprintf(&sb, "%s── %s\n", prefix, line)
	}

	sb.WriteString("\n")
	return sb.String()
}
