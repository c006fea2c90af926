package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kbukum/tpictl/httpclient"
)

// bmcReply is the envelope of the legacy /api/bmc answers.
type bmcReply struct {
	Response []map[string]any `json:"response"`
}

// printResponse writes the entries of a BMC answer as "key: value" lines.
// Answers that are not in the legacy envelope are written as received.
func printResponse(w io.Writer, resp *httpclient.Response) error {
	var reply bmcReply
	if err := resp.DecodeJSON(&reply); err != nil || reply.Response == nil {
		_, werr := fmt.Fprintln(w, strings.TrimSpace(string(resp.Body)))
		return werr
	}
	for _, entry := range reply.Response {
		if err := printEntry(w, entry, formatValue); err != nil {
			return err
		}
	}
	return nil
}

// printPowerStatus writes one "nodeN: On|Off" line per node.
func printPowerStatus(w io.Writer, resp *httpclient.Response) error {
	var reply bmcReply
	if err := resp.DecodeJSON(&reply); err != nil {
		return fmt.Errorf("decoding power status: %w", err)
	}
	for _, entry := range reply.Response {
		if err := printEntry(w, entry, powerState); err != nil {
			return err
		}
	}
	return nil
}

func printEntry(w io.Writer, entry map[string]any, format func(any) string) error {
	if len(entry) == 1 && entry["result"] != nil {
		_, err := fmt.Fprintln(w, formatValue(entry["result"]))
		return err
	}
	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s: %s\n", k, format(entry[k])); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

func powerState(v any) string {
	switch formatValue(v) {
	case "1", "true":
		return "On"
	case "0", "false":
		return "Off"
	default:
		return formatValue(v)
	}
}
