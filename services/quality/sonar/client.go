// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sonar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sysadmin-info/cognitive-stack/pkg/logging"
)

var (
	// ErrScannerFailed reports a non-zero scanner exit; the error text
	// carries the combined scanner output.
	ErrScannerFailed = errors.New("scanner failed")

	// ErrTaskIDNotFound means the scanner output carried no task URL.
	ErrTaskIDNotFound = errors.New("task ID not found in scanner output")

	// ErrAnalysisFailed reports a FAILED or CANCELED compute-engine task.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrWaitTimeout means the task did not finish inside the budget.
	ErrWaitTimeout = errors.New("analysis wait timed out")
)

const (
	defaultScannerBin   = "sonar-scanner"
	defaultPollInterval = 2 * time.Second
	defaultWaitTimeout  = 300 * time.Second
	issuePageSize       = 500
)

// Client talks to one quality server. The scanner subprocess submits
// work; the HTTP API reports on it.
type Client struct {
	baseURL      string
	token        string
	scannerBin   string
	pollInterval time.Duration
	waitTimeout  time.Duration
	httpClient   *http.Client
	log          *logging.Logger

	// seams for deterministic tests
	now    func() time.Time
	sleep  func(time.Duration)
	runner func(ctx context.Context, dir string) ([]byte, error)
}

// Option adjusts a Client.
type Option func(*Client)

// WithScannerBin overrides the scanner binary name.
func WithScannerBin(bin string) Option {
	return func(c *Client) { c.scannerBin = bin }
}

// WithPollInterval overrides the task poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithWaitTimeout overrides the wall-clock budget for WaitForTask.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Client) { c.waitTimeout = d }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger overrides the logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the server at baseURL. An empty token
// disables authentication; otherwise it travels as the basic-auth
// username with an empty password.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		scannerBin:   defaultScannerBin,
		pollInterval: defaultPollInterval,
		waitTimeout:  defaultWaitTimeout,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          logging.Default(),
		now:          time.Now,
		sleep:        time.Sleep,
	}
	c.runner = func(ctx context.Context, dir string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, c.scannerBin)
		cmd.Dir = dir
		return cmd.CombinedOutput()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit runs the scanner in projectDir and returns the compute-engine
// task ID scraped from its output. A non-zero exit is fatal and the
// combined output rides in the error.
func (c *Client) Submit(ctx context.Context, projectDir string) (string, error) {
	output, err := c.runner(ctx, projectDir)
	if err != nil {
		return "", fmt.Errorf("%w:\n%s", ErrScannerFailed, strings.TrimSpace(string(output)))
	}

	for _, line := range strings.Split(string(output), "\n") {
		_, after, found := strings.Cut(line, "task?id=")
		if !found {
			continue
		}
		fields := strings.Fields(after)
		if len(fields) == 0 {
			continue
		}
		c.log.Info("scan submitted", "task_id", fields[0])
		return fields[0], nil
	}
	return "", ErrTaskIDNotFound
}

// WaitForTask polls the compute-engine task until it succeeds, fails,
// or the wall-clock budget runs out. Unknown statuses keep the poll
// going.
func (c *Client) WaitForTask(ctx context.Context, taskID string) error {
	start := c.now()
	for c.now().Sub(start) < c.waitTimeout {
		status, err := c.taskStatus(ctx, taskID)
		if err != nil {
			return err
		}

		switch status {
		case "SUCCESS":
			return nil
		case "FAILED", "CANCELED":
			return fmt.Errorf("%w: task %s %s", ErrAnalysisFailed, taskID, status)
		}

		c.log.Debug("analysis in progress",
			"task_id", taskID,
			"elapsed", c.now().Sub(start).Truncate(time.Second).String(),
		)
		c.sleep(c.pollInterval)
	}
	return fmt.Errorf("%w after %s", ErrWaitTimeout, c.waitTimeout)
}

func (c *Client) taskStatus(ctx context.Context, taskID string) (string, error) {
	var body struct {
		Task struct {
			Status string `json:"status"`
		} `json:"task"`
	}
	params := url.Values{"id": {taskID}}
	if err := c.getJSON(ctx, "/api/ce/task", params, &body); err != nil {
		return "", err
	}
	return body.Task.Status, nil
}

// Issues fetches every unresolved issue for the project, paging through
// the search API until the reported total is reached.
func (c *Client) Issues(ctx context.Context, projectKey string) (*Report, error) {
	report := &Report{ProjectKey: projectKey}

	for page := 1; ; page++ {
		params := url.Values{
			"componentKeys": {projectKey},
			"resolved":      {"false"},
			"ps":            {strconv.Itoa(issuePageSize)},
			"p":             {strconv.Itoa(page)},
		}

		var body struct {
			Total  int `json:"total"`
			Issues []struct {
				Rule      string `json:"rule"`
				Severity  string `json:"severity"`
				Message   string `json:"message"`
				Component string `json:"component"`
				Line      int    `json:"line"`
				TextRange struct {
					StartLine int `json:"startLine"`
				} `json:"textRange"`
				Effort string `json:"effort"`
			} `json:"issues"`
		}
		if err := c.getJSON(ctx, "/api/issues/search", params, &body); err != nil {
			return nil, err
		}

		for _, item := range body.Issues {
			line := item.Line
			if line == 0 {
				line = item.TextRange.StartLine
			}
			report.Issues = append(report.Issues, Issue{
				Rule:     item.Rule,
				Severity: orInfo(item.Severity),
				Message:  item.Message,
				File:     componentPath(item.Component),
				Line:     line,
				Effort:   item.Effort,
			})
		}

		// A short page means the server has nothing more to give even
		// if the total claims otherwise.
		if len(report.Issues) >= body.Total || len(body.Issues) == 0 {
			return report, nil
		}
	}
}

// ScanAndWait submits a scan, waits for the analysis, and fetches the
// resulting issues.
func (c *Client) ScanAndWait(ctx context.Context, projectDir, projectKey string) (*Report, error) {
	taskID, err := c.Submit(ctx, projectDir)
	if err != nil {
		return nil, err
	}
	if err := c.WaitForTask(ctx, taskID); err != nil {
		return nil, err
	}
	c.log.Info("analysis complete", "project_key", projectKey)
	return c.Issues(ctx, projectKey)
}

// QualityGateStatus returns the project's quality-gate status, for
// example OK or ERROR.
func (c *Client) QualityGateStatus(ctx context.Context, projectKey string) (string, error) {
	var body struct {
		ProjectStatus struct {
			Status string `json:"status"`
		} `json:"projectStatus"`
	}
	params := url.Values{"projectKey": {projectKey}}
	if err := c.getJSON(ctx, "/api/qualitygates/project_status", params, &body); err != nil {
		return "", err
	}
	return body.ProjectStatus.Status, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if c.token != "" {
		req.SetBasicAuth(c.token, "")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quality server request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("quality server %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// componentPath strips the project-key prefix from a component key.
func componentPath(component string) string {
	if idx := strings.LastIndex(component, ":"); idx >= 0 {
		return component[idx+1:]
	}
	return component
}

func orInfo(severity string) string {
	if severity == "" {
		return "INFO"
	}
	return severity
}
