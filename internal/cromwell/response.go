/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package cromwell

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Response is a fully read HTTP response from the server.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is below 400.
func (r *Response) OK() bool {
	return r.StatusCode < 400
}

// Print writes "Success" and the indented JSON body for OK responses, or
// "Error: <status>" and the raw body otherwise. A non-JSON success body is
// returned as an error after "Success" has been written.
func Print(w io.Writer, r *Response) error {
	if !r.OK() {
		_, err := fmt.Fprintf(w, "Error: %d\n%s\n", r.StatusCode, r.Body)
		return err
	}

	if _, err := fmt.Fprintln(w, "Success"); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(r.Body), "", "  "); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

// Status is the body Cromwell returns on submission.
type Status struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// DecodeStatus parses a submission response body.
func (r *Response) DecodeStatus() (Status, error) {
	var s Status
	if err := json.Unmarshal(r.Body, &s); err != nil {
		return Status{}, fmt.Errorf("decode submission status: %w", err)
	}
	return s, nil
}
