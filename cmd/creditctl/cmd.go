package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/service"
	"github.com/AlifSrSE/css/internal/infrastructure/config"
	"github.com/AlifSrSE/css/internal/infrastructure/schema"
	"github.com/AlifSrSE/css/pkg/auth"
	"github.com/AlifSrSE/css/pkg/tlsutil"
)

const (
	fileFlagName         = "file"
	policyFlagName       = "policy"
	psychometricFlagName = "psychometric"
	strictFlagName       = "strict"
	idFlagName           = "id"
	outFlagName          = "out"
	hostFlagName         = "host"
	clientFlagName       = "client"
	orgFlagName          = "org"
	validForFlagName     = "valid-for"
	secretFlagName       = "secret"
	privateKeyFlagName   = "private-key"
	issuerFlagName       = "issuer"
	audienceFlagName     = "audience"
	subjectFlagName      = "subject"
	roleFlagName         = "role"
	ttlFlagName          = "ttl"
)

func newCommands() []*cli.Command {
	fileFlag := &cli.StringFlag{
		Name:     fileFlagName,
		Aliases:  []string{"f"},
		Usage:    "Path to the application document (JSON or YAML)",
		Required: true,
	}
	policyFlag := &cli.StringFlag{
		Name:  policyFlagName,
		Usage: "Path to a YAML scoring policy (optional, defaults to the built-in policy)",
	}

	return []*cli.Command{
		{
			Name:      "score",
			Aliases:   []string{"s"},
			Usage:     "Score an application document without a running service",
			UsageText: "creditctl score -f application.yaml --psychometric answers.json --policy policy.yaml",
			Action:    cmdScore,
			Flags: []cli.Flag{
				fileFlag,
				policyFlag,
				&cli.StringFlag{
					Name:  psychometricFlagName,
					Usage: "Path to psychometric responses (JSON or YAML, optional)",
				},
				&cli.BoolFlag{
					Name:  strictFlagName,
					Usage: "Fail when psychometric responses are invalid instead of ignoring them",
				},
				&cli.StringFlag{
					Name:  idFlagName,
					Usage: "Application ID reported in the result",
					Value: "local",
				},
			},
		},
		{
			Name:    "validate",
			Aliases: []string{"v"},
			Usage:   "Check an application document against the application schema",
			Action:  cmdValidate,
			Flags:   []cli.Flag{fileFlag},
		},
		{
			Name:   "questions",
			Usage:  "List the psychometric questionnaire",
			Action: cmdQuestions,
		},
		{
			Name:   "policy",
			Usage:  "Print the effective scoring policy",
			Action: cmdPolicy,
			Flags:  []cli.Flag{policyFlag},
		},
		{
			Name:      "certs",
			Usage:     "Generate a development CA, server certificate and client certificates",
			UsageText: "creditctl certs --out certs --host scoring.internal --client loan-origination",
			Action:    cmdCerts,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  outFlagName,
					Usage: "Directory the certificates are written to",
					Value: "certs",
				},
				&cli.StringSliceFlag{
					Name:  hostFlagName,
					Usage: "Host name or IP for the server certificate (can be specified multiple times)",
					Value: tlsutil.DefaultHosts(),
				},
				&cli.StringSliceFlag{
					Name:  clientFlagName,
					Usage: "Issue a client certificate with this common name (can be specified multiple times)",
				},
				&cli.StringFlag{
					Name:  orgFlagName,
					Usage: "Organization stamped on the certificates",
					Value: tlsutil.DefaultOrganization,
				},
				&cli.DurationFlag{
					Name:  validForFlagName,
					Usage: "Lifetime of the server and client certificates",
					Value: tlsutil.DefaultValidity,
				},
			},
		},
		{
			Name:   "keys",
			Usage:  "Generate an RSA key pair for signing API tokens",
			Action: cmdKeys,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  outFlagName,
					Usage: "Directory jwt.pem and jwt.pub.pem are written to",
					Value: "keys",
				},
			},
		},
		{
			Name:      "token",
			Usage:     "Issue a bearer token for the scoring API",
			UsageText: "creditctl token --private-key keys/jwt.pem --subject officer-7 --role loan_officer",
			Action:    cmdToken,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    secretFlagName,
					Usage:   "HMAC secret shared with the service",
					Sources: cli.EnvVars("JWT_SECRET"),
				},
				&cli.StringFlag{
					Name:  privateKeyFlagName,
					Usage: "RSA private key (PEM or path) used instead of the secret",
				},
				&cli.StringFlag{
					Name:    issuerFlagName,
					Usage:   "Token issuer",
					Sources: cli.EnvVars("JWT_ISSUER"),
				},
				&cli.StringFlag{
					Name:    audienceFlagName,
					Usage:   "Token audience",
					Sources: cli.EnvVars("JWT_AUDIENCE"),
				},
				&cli.StringFlag{
					Name:     subjectFlagName,
					Usage:    "Caller identity recorded on submissions and scores",
					Required: true,
				},
				&cli.StringSliceFlag{
					Name:  roleFlagName,
					Usage: "Role granted to the caller: " + strings.Join(auth.KnownRoles(), ", "),
					Value: []string{auth.RoleLoanOfficer},
				},
				&cli.DurationFlag{
					Name:  ttlFlagName,
					Usage: "Token lifetime",
					Value: auth.DefaultTokenTTL,
				},
			},
		},
	}
}

// ValidationReport is printed by the validate command.
type ValidationReport struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// ScoreReport is printed by the score command.
type ScoreReport struct {
	Result  model.ScoreResult     `json:"result"`
	Summary model.ScoringSummary  `json:"summary"`
	Policy  service.ScoringPolicy `json:"policy"`
}

func cmdScore(_ context.Context, cmd *cli.Command) error {
	validator, err := schema.NewApplicationValidator()
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	raw, err := readDocument(cmd.String(fileFlagName))
	if err != nil {
		return err
	}
	if err := validator.ValidateJSON(raw); err != nil {
		return err
	}
	var app model.ApplicationData
	if err := json.Unmarshal(raw, &app); err != nil {
		return fmt.Errorf("decoding application: %w", err)
	}

	policy, err := config.LoadPolicy(cmd.String(policyFlagName))
	if err != nil {
		return err
	}
	psych := service.NewPsychometricModel(time.Now)
	engine, err := service.NewScoringEngine(policy, psych)
	if err != nil {
		return fmt.Errorf("scoring policy: %w", err)
	}

	responses, err := loadResponses(cmd, psych)
	if err != nil {
		return err
	}

	result, err := engine.Score(cmd.String(idFlagName), app, responses)
	if err != nil {
		return err
	}
	slog.Debug("application scored",
		"application_id", result.ApplicationID,
		"score", result.FinalScore.String(),
		"grade", result.Grade.String())

	return encode(cmd, ScoreReport{Result: result, Summary: result.Summary(), Policy: policy})
}

func loadResponses(cmd *cli.Command, psych *service.PsychometricModel) (*model.PsychometricResponses, error) {
	path := cmd.String(psychometricFlagName)
	if path == "" {
		return nil, nil
	}
	raw, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	var r model.PsychometricResponses
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decoding psychometric responses: %w", err)
	}

	v := psych.Validate(r)
	if v.Valid {
		return &r, nil
	}
	if cmd.Bool(strictFlagName) {
		return nil, &service.ValidationError{Problems: v.Errors}
	}
	slog.Warn("ignoring invalid psychometric responses", "errors", v.Errors)
	return nil, nil
}

func cmdValidate(_ context.Context, cmd *cli.Command) error {
	validator, err := schema.NewApplicationValidator()
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}
	raw, err := readDocument(cmd.String(fileFlagName))
	if err != nil {
		return err
	}

	err = validator.ValidateJSON(raw)
	var docErr *schema.DocumentError
	switch {
	case err == nil:
		return encode(cmd, ValidationReport{Valid: true})
	case errors.As(err, &docErr):
		if encErr := encode(cmd, ValidationReport{Violations: docErr.Violations}); encErr != nil {
			return encErr
		}
		return fmt.Errorf("%s: %d schema violation(s)", cmd.String(fileFlagName), len(docErr.Violations))
	default:
		return err
	}
}

func cmdQuestions(_ context.Context, cmd *cli.Command) error {
	return encode(cmd, service.NewPsychometricModel(time.Now).Questions())
}

func cmdPolicy(_ context.Context, cmd *cli.Command) error {
	policy, err := config.LoadPolicy(cmd.String(policyFlagName))
	if err != nil {
		return err
	}
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("scoring policy: %w", err)
	}
	return encode(cmd, policy)
}

func cmdCerts(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String(outFlagName)
	pki, err := tlsutil.GenerateDevPKI(dir, tlsutil.DevPKIOptions{
		Hosts:        cmd.StringSlice(hostFlagName),
		Clients:      cmd.StringSlice(clientFlagName),
		Organization: cmd.String(orgFlagName),
		Validity:     cmd.Duration(validForFlagName),
	})
	if err != nil {
		return err
	}
	slog.Debug("development PKI issued", "ca", pki.CA, "server", pki.Server, "clients", len(pki.Clients))
	_, err = fmt.Fprintf(cmd.Root().Writer, "certificates written to %s\n", dir)
	return err
}

func cmdKeys(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String(outFlagName)
	private, public, err := auth.GenerateKeyPair()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "jwt.pem"), private, 0o600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "jwt.pub.pem"), public, 0o644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "keys written to %s\n", dir)
	return err
}

func cmdToken(_ context.Context, cmd *cli.Command) error {
	cfg := auth.JWTConfig{
		Secret:   cmd.String(secretFlagName),
		Issuer:   cmd.String(issuerFlagName),
		Audience: cmd.String(audienceFlagName),
		TTL:      cmd.Duration(ttlFlagName),
	}
	if path := cmd.String(privateKeyFlagName); path != "" {
		key, err := auth.ReadKey(path)
		if err != nil {
			return err
		}
		cfg.PrivateKeyPEM = key
	}
	svc, err := auth.NewJWTService(cfg)
	if err != nil {
		return err
	}
	token, err := svc.IssueToken(cmd.String(subjectFlagName), cmd.StringSlice(roleFlagName))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, token)
	return err
}

// readDocument loads a JSON or YAML file and returns it as JSON.
func readDocument(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", path, err)
		}
		return out, nil
	default:
		return raw, nil
	}
}
