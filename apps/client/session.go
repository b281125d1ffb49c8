package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const sessionFile = "session.json"

// session is the login persisted in the data dir.
type session struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func loadSession(dataDir string) (session, error) {
	var sess session
	data, err := os.ReadFile(filepath.Join(dataDir, sessionFile))
	if os.IsNotExist(err) {
		return sess, nil
	}
	if err != nil {
		return sess, errors.Wrap(err, "reading session")
	}
	if err := json.Unmarshal(data, &sess); err != nil {
		return sess, errors.Wrap(err, "decoding session")
	}
	return sess, nil
}

func saveSession(dataDir string, sess session) error {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return errors.Wrap(err, "creating data dir")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return errors.Wrap(os.WriteFile(filepath.Join(dataDir, sessionFile), data, 0o600), "writing session")
}
