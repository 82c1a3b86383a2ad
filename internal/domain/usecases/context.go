// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

// Profile is the fixed personal information appended to every document.
type Profile struct {
	Name  string
	Facts []string
}

// ContextSources locates the optional inputs of the context document.
// An empty path disables its section.
type ContextSources struct {
	ProjectsDir     string
	AchievementsDir string
	PublicationsDir string
	ExtrasDir       string
}

// ContextAssembler builds the context document from local files.
// It is rebuilt on every call; wrap it in a CachedContext to reuse results.
type ContextAssembler struct {
	loader  ports.FragmentLoader
	sources ContextSources
	profile Profile
}

// NewContextAssembler creates a ContextAssembler with injected dependencies.
func NewContextAssembler(loader ports.FragmentLoader, sources ContextSources, profile Profile) *ContextAssembler {
	return &ContextAssembler{
		loader:  loader,
		sources: sources,
		profile: profile,
	}
}

// Context implements ports.ContextSource. Unreadable sources are logged and
// skipped, so the only error is a cancelled context.
func (a *ContextAssembler) Context(ctx context.Context) (string, error) {
	doc := a.Build(ctx)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return doc, nil
}

// Build assembles the document. Section order is fixed:
// Projects, Achievements, Publications, Personal Information, extras.
func (a *ContextAssembler) Build(ctx context.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s - Portfolio Data\n\n", a.profile.Name)

	a.writeProjects(ctx, &sb)
	a.writeAchievements(ctx, &sb)
	a.writePublications(ctx, &sb)
	a.writePersonal(&sb)
	a.writeExtras(ctx, &sb)

	return sb.String()
}

func (a *ContextAssembler) writeProjects(ctx context.Context, sb *strings.Builder) {
	if a.sources.ProjectsDir == "" {
		return
	}
	projects, err := a.loader.LoadMarkdown(ctx, a.sources.ProjectsDir)
	if err != nil {
		log.Printf("[context] could not read projects directory: %v", err)
		return
	}

	sb.WriteString("## Projects\n\n")
	for _, p := range projects {
		title := strings.Replace(strings.Replace(p.Name, ".md", "", 1), "Readme - ", "", 1)
		fmt.Fprintf(sb, "### %s\n%s\n\n", title, p.Content)
	}
}

func (a *ContextAssembler) writeAchievements(ctx context.Context, sb *strings.Builder) {
	if a.sources.AchievementsDir == "" {
		return
	}
	names, err := a.loader.ListNames(ctx, a.sources.AchievementsDir, ".pdf")
	if err != nil {
		log.Printf("[context] could not read achievements directory: %v", err)
		return
	}

	sb.WriteString("## Achievements\n\n")
	fmt.Fprintf(sb, "Total achievements: %d\n", len(names))
	sb.WriteString("Available certificates:\n")
	for _, name := range names {
		fmt.Fprintf(sb, "- %s\n", strings.Replace(name, ".pdf", "", 1))
	}
	sb.WriteString("\n")
}

func (a *ContextAssembler) writePublications(ctx context.Context, sb *strings.Builder) {
	if a.sources.PublicationsDir == "" {
		return
	}
	names, err := a.loader.ListNames(ctx, a.sources.PublicationsDir, ".pdf")
	if err != nil {
		log.Printf("[context] could not read publications directory: %v", err)
		return
	}

	sb.WriteString("## Publications\n\n")
	for _, name := range names {
		fmt.Fprintf(sb, "- %s\n", a.publicationTitle(name))
	}
	sb.WriteString("\n")
}

// publicationTitle strips the journal prefix and the author suffix that the
// publication files carry in their names.
func (a *ContextAssembler) publicationTitle(name string) string {
	title := strings.Replace(name, ".pdf", "", 1)
	title = strings.Replace(title, "Publikasi Jurnal ", "", 1)
	if a.profile.Name != "" {
		title = strings.Replace(title, "_"+a.profile.Name, "", 1)
	}
	return title
}

func (a *ContextAssembler) writePersonal(sb *strings.Builder) {
	sb.WriteString("## Personal Information\n\n")
	fmt.Fprintf(sb, "- Name: %s\n", a.profile.Name)
	for _, fact := range a.profile.Facts {
		fmt.Fprintf(sb, "- %s\n", fact)
	}
	sb.WriteString("\n")
}

func (a *ContextAssembler) writeExtras(ctx context.Context, sb *strings.Builder) {
	if a.sources.ExtrasDir == "" {
		return
	}
	extras, err := a.loader.LoadMarkdown(ctx, a.sources.ExtrasDir)
	if err != nil {
		log.Printf("[context] could not read extras directory: %v", err)
		return
	}
	for _, e := range extras {
		sb.WriteString(strings.TrimSpace(e.Content))
		sb.WriteString("\n\n")
	}
}

// Dirs returns the configured source directories, for watchers.
func (a *ContextAssembler) Dirs() []string {
	var dirs []string
	for _, d := range []string{
		a.sources.ProjectsDir,
		a.sources.AchievementsDir,
		a.sources.PublicationsDir,
		a.sources.ExtrasDir,
	} {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
