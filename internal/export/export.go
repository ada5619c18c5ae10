package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"plural-chat/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// Filename builds the conventional export name for a format, e.g.
// plural_chat_export_20240131_154500.csv.
func Filename(prefix, format string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), format)
}

// WriteAuditCSV renders audit records as one header row plus one row per
// record. encoding/csv quotes fields with embedded commas, so a
// description stays a single cell.
func WriteAuditCSV(w io.Writer, logs []models.AuditLog) error {
	cw := csv.NewWriter(w)

	header := []string{"ID", "Event Type", "Category", "User ID", "Description", "IP Address", "Success", "Timestamp"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, entry := range logs {
		userID := ""
		if entry.UserID != nil {
			userID = strconv.Itoa(*entry.UserID)
		}
		success := "Failed"
		if entry.Success {
			success = "Success"
		}
		row := []string{
			strconv.Itoa(entry.ID),
			entry.EventType,
			entry.Category,
			userID,
			entry.Description,
			entry.IPAddress,
			success,
			entry.Timestamp,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMessagesCSV renders message history with one row per message.
func WriteMessagesCSV(w io.Writer, messages []models.Message) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Timestamp", "Author", "Pronouns", "Message"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range messages {
		msg := &messages[i]
		pronouns := ""
		if msg.Member != nil {
			pronouns = msg.Member.Pronouns
		}
		row := []string{
			msg.Timestamp.Format(timestampLayout),
			msg.AuthorName(),
			pronouns,
			msg.Content,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type jsonExport struct {
	ExportDate   string           `json:"export_date"`
	MessageCount int              `json:"message_count"`
	Messages     []models.Message `json:"messages"`
}

func WriteMessagesJSON(w io.Writer, messages []models.Message) error {
	doc := jsonExport{
		ExportDate:   time.Now().Format(time.RFC3339),
		MessageCount: len(messages),
		Messages:     messages,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// WriteMessagesText renders a readable transcript.
func WriteMessagesText(w io.Writer, messages []models.Message) error {
	rule := strings.Repeat("=", 60)

	lines := []string{
		rule,
		"Plural Chat Export",
		fmt.Sprintf("Generated: %s", time.Now().Format(timestampLayout)),
		fmt.Sprintf("Messages: %d", len(messages)),
		rule,
		"",
	}

	for i := range messages {
		msg := &messages[i]
		author := msg.AuthorName()
		if msg.Member != nil && msg.Member.Pronouns != "" {
			author = fmt.Sprintf("%s (%s)", author, msg.Member.Pronouns)
		}
		lines = append(lines,
			fmt.Sprintf("[%s] %s:", msg.Timestamp.Format(timestampLayout), author),
			fmt.Sprintf("  %s", msg.Content),
			"",
		)
	}

	lines = append(lines, rule, fmt.Sprintf("End of export (%d messages)", len(messages)), rule)

	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
