package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shaiso/rmqlink/internal/mq"
)

var endpointHeaders = []string{"ID", "HOST", "PORT", "VHOST", "EXCHANGE", "FLAGS", "FRAMES", "HEARTBEAT", "STATE"}

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return newOutput(jsonMode, os.Stdout, os.Stderr)
}

func newOutput(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	// Заголовки
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	// Разделитель
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	// Строки данных
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// Endpoints выводит список endpoint'ов: таблицей или JSON массивом.
func (o *Output) Endpoints(eps []EndpointResponse) {
	rows := make([][]string, len(eps))
	for i, ep := range eps {
		rows[i] = endpointRow(ep)
	}
	o.Print(endpointHeaders, rows, eps)
}

// Endpoint выводит один endpoint: строкой таблицы или JSON объектом.
func (o *Output) Endpoint(ep EndpointResponse) {
	o.Print(endpointHeaders, [][]string{endpointRow(ep)}, ep)
}

// LocalEndpoints выводит endpoint'ы локального Manager.
func (o *Output) LocalEndpoints(eps []*mq.Endpoint) {
	resp := make([]EndpointResponse, len(eps))
	for i, ep := range eps {
		resp[i] = EndpointResponse(ep.Info())
	}
	o.Endpoints(resp)
}

func endpointRow(ep EndpointResponse) []string {
	state := ep.State
	if ep.SessionID != "" {
		state += " (" + ep.SessionID[:min(8, len(ep.SessionID))] + ")"
	}
	return []string{
		ep.ID, ep.Host, strconv.Itoa(ep.Port), ep.VHost, ep.Exchange, ep.Flags,
		strconv.Itoa(ep.MaxFrameSize), strconv.Itoa(ep.Heartbeat), state,
	}
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}
