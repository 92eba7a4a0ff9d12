package metrics

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// LogForwardingFormatter wraps a logrus.Formatter and forwards every entry,
// fields included, to New Relic. Entries logged with a context carrying a
// transaction are attached to that transaction.
type LogForwardingFormatter struct {
	app       *newrelic.Application
	formatter logrus.Formatter
}

func NewLogForwardingFormatter(app *newrelic.Application, formatter logrus.Formatter) *LogForwardingFormatter {
	return &LogForwardingFormatter{
		app:       app,
		formatter: formatter,
	}
}

func (f *LogForwardingFormatter) Format(e *logrus.Entry) ([]byte, error) {
	formatted, err := f.formatter.Format(e)
	if err != nil {
		return nil, err
	}

	data := newrelic.LogData{
		Severity: e.Level.String(),
		Message:  forwardedMessage(e.Message, e.Data),
	}

	var txn *newrelic.Transaction
	if e.Context != nil {
		txn = newrelic.FromContext(e.Context)
	}

	enrich := newrelic.FromApp(f.app)
	if txn != nil {
		txn.RecordLog(data)
		enrich = newrelic.FromTxn(txn)
	} else {
		f.app.RecordLog(data)
	}

	b := bytes.NewBuffer(bytes.TrimRight(formatted, "\n"))
	if err := newrelic.EnrichLog(b, enrich); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// forwardedMessage renders msg followed by fields as sorted key=value pairs.
func forwardedMessage(msg string, fields logrus.Fields) string {
	if len(fields) == 0 {
		return msg
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(msg)
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		fmt.Fprintf(&sb, " %s=%q", k, fmt.Sprint(v))
	}
	return sb.String()
}
