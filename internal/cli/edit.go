package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"cvforge/internal/common"
	"cvforge/internal/errors"
	"cvforge/internal/profile"
	"cvforge/internal/types"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [profile-file]",
	Short: "Edit a profile document in place",
	Long: `Edit a profile document by dotted field path, without opening an editor.
Operations are applied in flag order semantics: all removals, then additions,
then field sets, then skill tag changes.

Field paths follow the document shape:
  summary
  contact_info.email
  experience.0.company
  education.1.degree
  skills.0.category

Examples:
  cvforge edit profile.json --set contact_info.name="Ada Lovelace"
  cvforge edit profile.json --add experience --set experience.1.role="Engineer"
  cvforge edit profile.json --remove education:1
  cvforge edit profile.json --add-skill 0:Go --remove-skill 0:PHP

If the profile file does not exist, a blank profile is created first.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editSets         []string
	editAdds         []string
	editRemoves      []string
	editAddSkills    []string
	editRemoveSkills []string
)

func init() {
	editCmd.Flags().StringArrayVar(&editSets, "set", nil, "Set a field: path=value (repeatable)")
	editCmd.Flags().StringArrayVar(&editAdds, "add", nil, "Append a blank entry to a section: experience, education, skills, certifications (repeatable)")
	editCmd.Flags().StringArrayVar(&editRemoves, "remove", nil, "Remove an entry: section:index (repeatable)")
	editCmd.Flags().StringArrayVar(&editAddSkills, "add-skill", nil, "Add a skill tag: groupIndex:tag (repeatable)")
	editCmd.Flags().StringArrayVar(&editRemoveSkills, "remove-skill", nil, "Remove a skill tag: groupIndex:tag (repeatable)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	fileProcessor := common.NewFileProcessor(logger)
	profileFile := args[0]

	form := profile.NewStore()
	if _, err := os.Stat(profileFile); err == nil {
		existing, err := fileProcessor.ReadProfile(profileFile)
		if err != nil {
			return err
		}
		form.ReplaceAll(existing)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access profile file %s: %w", profileFile, err)
	} else {
		logger.Info("Profile file not found, starting from a blank profile", "file", profileFile)
	}

	if err := applyRemovals(form, editRemoves); err != nil {
		return err
	}
	if err := applyAdditions(form, editAdds); err != nil {
		return err
	}
	if err := applySets(form, editSets); err != nil {
		return err
	}
	if err := applySkillChanges(form, editAddSkills, editRemoveSkills, logger); err != nil {
		return err
	}

	if err := fileProcessor.WriteProfile(profileFile, form.Snapshot()); err != nil {
		return err
	}
	logger.Info("Profile updated", "file", profileFile)
	return nil
}

// applyRemovals removes entries addressed as section:index. All indices
// refer to the pre-edit list, so they are resolved to entry keys before
// the first removal shifts anything.
func applyRemovals(form *profile.Store, removes []string) error {
	type removal struct {
		section string
		key     types.EntryKey
	}

	keysBySection := make(map[string][]types.EntryKey)
	resolved := make([]removal, 0, len(removes))
	for _, spec := range removes {
		section, index, err := parseSectionIndex(spec)
		if err != nil {
			return err
		}

		keys, ok := keysBySection[section]
		if !ok {
			keys, err = form.EntryKeys(section)
			if err != nil {
				return err
			}
			keysBySection[section] = keys
		}
		if index < 0 || index >= len(keys) {
			return fmt.Errorf("no entry %d in section %s", index, section)
		}
		resolved = append(resolved, removal{section: section, key: keys[index]})
	}

	for _, r := range resolved {
		if err := form.RemoveEntry(r.section, r.key); err != nil {
			return err
		}
	}
	return nil
}

// applyAdditions appends blank entries to the named sections
func applyAdditions(form *profile.Store, adds []string) error {
	for _, section := range adds {
		if _, err := form.AppendEntry(strings.TrimSpace(section)); err != nil {
			return err
		}
	}
	return nil
}

// applySets applies path=value field assignments
func applySets(form *profile.Store, sets []string) error {
	for _, spec := range sets {
		path, value, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q, expected path=value", spec)
		}
		if err := form.Set(strings.TrimSpace(path), value); err != nil {
			return err
		}
	}
	return nil
}

// applySkillChanges applies tag additions and removals on skill groups
func applySkillChanges(form *profile.Store, adds, removes []string, logger *errors.Logger) error {
	for _, spec := range adds {
		index, tag, err := parseSkillSpec(spec, "--add-skill")
		if err != nil {
			return err
		}
		added, err := form.AddSkillTag(index, tag)
		if err != nil {
			return err
		}
		if !added {
			logger.Warn("Skill tag not added", "tag", tag, "group", index)
		}
	}

	for _, spec := range removes {
		index, tag, err := parseSkillSpec(spec, "--remove-skill")
		if err != nil {
			return err
		}
		removed, err := form.RemoveSkillTag(index, tag)
		if err != nil {
			return err
		}
		if !removed {
			logger.Warn("Skill tag not found", "tag", tag, "group", index)
		}
	}

	return nil
}

// parseSectionIndex parses a section:index spec
func parseSectionIndex(spec string) (string, int, error) {
	section, indexStr, ok := strings.Cut(spec, ":")
	if !ok {
		return "", 0, fmt.Errorf("invalid entry spec %q, expected section:index", spec)
	}
	index, err := strconv.Atoi(strings.TrimSpace(indexStr))
	if err != nil {
		return "", 0, fmt.Errorf("invalid entry index in %q: %w", spec, err)
	}
	return strings.TrimSpace(section), index, nil
}

// parseSkillSpec parses a groupIndex:tag spec
func parseSkillSpec(spec, flag string) (int, string, error) {
	indexStr, tag, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, "", fmt.Errorf("invalid %s %q, expected groupIndex:tag", flag, spec)
	}
	index, err := strconv.Atoi(strings.TrimSpace(indexStr))
	if err != nil {
		return 0, "", fmt.Errorf("invalid skill group index in %q: %w", spec, err)
	}
	return index, tag, nil
}
