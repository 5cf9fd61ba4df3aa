package models

import "io"

// ArtifactKind is one of the five upload slots a group may fill. Each slot is
// stored under a fixed filename so a resubmission overwrites the previous file.
type ArtifactKind string

const (
	ArtifactVideo  ArtifactKind = "video"
	ArtifactSlides ArtifactKind = "ppt"
	ArtifactReport ArtifactKind = "report"
	ArtifactCode   ArtifactKind = "code"
	ArtifactImage  ArtifactKind = "picture"
)

var artifactFileNames = map[ArtifactKind]string{
	ArtifactVideo:  "main.mp4",
	ArtifactSlides: "report.pptx",
	ArtifactReport: "report.pdf",
	ArtifactCode:   "code.zip",
	ArtifactImage:  "main.png",
}

func (k ArtifactKind) FileName() string {
	return artifactFileNames[k]
}

func (k ArtifactKind) Valid() bool {
	_, ok := artifactFileNames[k]
	return ok
}

func AllArtifactKinds() []ArtifactKind {
	return []ArtifactKind{ArtifactVideo, ArtifactSlides, ArtifactReport, ArtifactCode, ArtifactImage}
}

// Artifact is one uploaded file on its way into the store.
type Artifact struct {
	Kind    ArtifactKind
	Content io.Reader
	Size    int64
}
