package archive

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ytget/course-archiver/internal/download"
	"github.com/ytget/course-archiver/internal/model"
	"github.com/ytget/course-archiver/internal/platform"
)

// Files written next to the fetched assets
const (
	CourseFile    = "course.json"
	ModuleFile    = "module.json"
	LessonFile    = "lesson.json"
	ContentFile   = "content.md"
	ThumbnailFile = "thumbnail.png"
)

// moduleGroup is a list of modules sharing one parent directory
type moduleGroup struct {
	section string
	root    string
	modules []*model.Module
}

// moduleGroups splits the course into the module lists walked under each
// parent directory. Sections share the output root unless sectionDirs is set,
// in which case each gets its own ordinal-prefixed directory.
func moduleGroups(course *model.Course, root string, sectionDirs bool) []moduleGroup {
	if !course.IsSectioned() {
		return []moduleGroup{{root: root, modules: course.Modules}}
	}

	groups := make([]moduleGroup, 0, len(course.Sections))
	for i, section := range course.Sections {
		if section == nil {
			continue
		}
		group := moduleGroup{section: section.Name, root: root, modules: section.Modules}
		if sectionDirs {
			group.root = filepath.Join(root, platform.OrdinalName(i, section.Name))
		}
		groups = append(groups, group)
	}
	return groups
}

// ModuleDir returns the directory of the module at ordinal under root
func ModuleDir(root string, ordinal int, module *model.Module) string {
	return filepath.Join(root, platform.OrdinalName(ordinal, module.Name))
}

// LessonDir returns the directory of the lesson at ordinal under moduleDir
func LessonDir(moduleDir string, ordinal int, lesson *model.Lesson) string {
	return filepath.Join(moduleDir, platform.OrdinalName(ordinal, lesson.Title))
}

// assetPath joins a declared file name onto dir after sanitizing it
func assetPath(dir, name string) (string, error) {
	clean := platform.SanitizeName(name)
	switch strings.TrimSpace(clean) {
	case "", ".", "..":
		return "", fmt.Errorf("%w: %q", download.ErrInvalidDestination, name)
	}
	return filepath.Join(dir, clean), nil
}

// lessonAssets lists the fetchable assets of a lesson in fetch order: video,
// thumbnail, then each file. Entries whose name or URL cannot be derived carry
// the reason in Err.
func lessonAssets(lesson *model.Lesson, lessonPath, baseURL string) []model.PlannedAsset {
	var assets []model.PlannedAsset

	if lesson.HasVideo() {
		video := lesson.Video
		asset := model.PlannedAsset{Kind: model.AssetKindVideo, LessonTitle: lesson.Title, URL: video.StreamLink}
		asset.Path, asset.Err = assetPath(lessonPath, video.Name)
		assets = append(assets, asset)

		if video.HasThumbnail() {
			thumb := model.PlannedAsset{
				Kind:        model.AssetKindThumbnail,
				LessonTitle: lesson.Title,
				Path:        filepath.Join(lessonPath, ThumbnailFile),
			}
			thumb.URL, thumb.Err = platform.ResolveAssetURL(baseURL, strings.TrimSpace(video.Thumbnail))
			assets = append(assets, thumb)
		}
	}

	if !lesson.HasFiles() {
		return assets
	}
	for i, file := range lesson.Files {
		asset := model.PlannedAsset{Kind: model.AssetKindFile, LessonTitle: lesson.Title}
		if file == nil {
			asset.Err = fmt.Errorf("file entry %d is null", i)
			assets = append(assets, asset)
			continue
		}
		asset.Path, asset.Err = assetPath(lessonPath, file.Name)
		if asset.Err == nil {
			asset.URL, asset.Err = platform.ResolveAssetURL(baseURL, file.URL)
		}
		assets = append(assets, asset)
	}

	return assets
}

// Plan lists every file a run over doc would write, in the order the run
// writes them, without touching the filesystem.
func Plan(doc *model.Document, opts Options) []model.PlannedAsset {
	root := opts.OutputRoot
	plan := []model.PlannedAsset{{Kind: model.AssetKindMetadata, Path: filepath.Join(root, CourseFile)}}
	if doc == nil || doc.Course == nil {
		return plan
	}

	for _, group := range moduleGroups(doc.Course, root, opts.SectionDirs) {
		for m, module := range group.modules {
			if module == nil {
				continue
			}
			moduleDir := ModuleDir(group.root, m, module)
			plan = append(plan, model.PlannedAsset{Kind: model.AssetKindMetadata, Path: filepath.Join(moduleDir, ModuleFile)})

			for l, lesson := range module.Lessons {
				if lesson == nil {
					continue
				}
				lessonDir := LessonDir(moduleDir, l, lesson)
				plan = append(plan, model.PlannedAsset{
					Kind:        model.AssetKindMetadata,
					LessonTitle: lesson.Title,
					Path:        filepath.Join(lessonDir, LessonFile),
				})
				plan = append(plan, lessonAssets(lesson, lessonDir, opts.BaseURL)...)
				if lesson.HasContent() {
					plan = append(plan, model.PlannedAsset{
						Kind:        model.AssetKindContent,
						LessonTitle: lesson.Title,
						Path:        filepath.Join(lessonDir, ContentFile),
					})
				}
			}
		}
	}
	return plan
}
