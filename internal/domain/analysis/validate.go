package analysis

import "regexp"

// repositoryURLPattern accepts https://github.com/<owner>/<repo> with an
// optional trailing slash. Owner and repo allow the characters GitHub
// itself allows in names.
var repositoryURLPattern = regexp.MustCompile(`^https://github\.com/[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+/?$`)

// ValidateRepositoryURL checks the well-formedness of the subject
// identifier. A failing URL never enters the store.
func ValidateRepositoryURL(rawURL string) error {
	if rawURL == "" || !repositoryURLPattern.MatchString(rawURL) {
		return ErrInvalidRepositoryURL
	}
	return nil
}
