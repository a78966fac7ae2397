package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Update is one entry in a notification batch.
type Update struct {
	Repository    string
	CurrentTag    string
	LatestVersion string
	ContainerName string
}

// FormatTitle builds the batch notification title. appTitle is an optional
// deployment-configured prefix.
func FormatTitle(appTitle string, count int) string {
	title := fmt.Sprintf("%d Docker updates available", count)
	if count == 1 {
		title = "1 Docker update available"
	}
	if appTitle == "" {
		return title
	}
	return appTitle + ": " + title
}

// FormatBatch renders one markdown message for a whole batch of updates,
// grouped by repository. One message per cycle keeps a busy host from
// flooding the notification channel.
func FormatBatch(updates []Update, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Docker updates detected on %s**\n\n", now.Format("2006-01-02 at 15:04"))

	byRepo := make(map[string][]Update)
	repos := make([]string, 0, len(updates))
	for _, u := range updates {
		if _, seen := byRepo[u.Repository]; !seen {
			repos = append(repos, u.Repository)
		}
		byRepo[u.Repository] = append(byRepo[u.Repository], u)
	}
	sort.Strings(repos)

	for _, repo := range repos {
		group := byRepo[repo]
		fmt.Fprintf(&b, "📦 **%s**\n", repo)

		currentTags := make([]string, 0, len(group))
		containers := make([]string, 0, len(group))
		latest := ""
		for _, u := range group {
			currentTags = append(currentTags, u.CurrentTag)
			if u.ContainerName != "" {
				containers = append(containers, u.ContainerName)
			}
			// Groups share a resolver answer; keep the last one seen
			latest = u.LatestVersion
		}
		sort.Strings(currentTags)

		if len(currentTags) > 1 {
			fmt.Fprintf(&b, "  • Current versions: %s\n", strings.Join(currentTags, ", "))
		} else {
			fmt.Fprintf(&b, "  • Current version: %s\n", currentTags[0])
		}
		fmt.Fprintf(&b, "  • New version available: %s\n", latest)
		if len(containers) == len(group) && len(containers) > 0 {
			fmt.Fprintf(&b, "  • Affected containers: %s\n", strings.Join(containers, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("To update, run `docker pull [image]:[tag]` or update through your orchestrator.")

	return b.String()
}
