package api

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/dgallion1/chaptersplit/internal/pipeline"
)

//go:embed usage.md
var usageMarkdown []byte

const (
	defaultOutputPath  = "output_chapters_pdf"
	invalidFileMessage = "Invalid file. Please upload a PDF."
)

var pageTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>PDF Chapter Splitter</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css" rel="stylesheet">
    <style>
        body { background: #f8f9fa; }
        .container { max-width: 600px; margin-top: 80px; background: white; padding: 40px; border-radius: 15px; box-shadow: 0 0 20px rgba(0,0,0,0.1); }
        .form-label { font-weight: 500; }
        .btn-primary { width: 100%; }
        .result { margin-top: 20px; }
        .usage { margin-top: 30px; font-size: 0.9em; color: #555; }
    </style>
</head>
<body>
<div class="container">
    <h2 class="text-center mb-4">PDF Chapter Splitter</h2>
    <form method="POST" enctype="multipart/form-data">
        <div class="mb-3">
            <label class="form-label">Select PDF File:</label>
            <input class="form-control" type="file" name="file" accept=".pdf" required>
        </div>
        <div class="mb-3">
            <label class="form-label">Output Folder Name:</label>
            <input class="form-control" type="text" name="output_path" value="{{.OutputPath}}" required>
        </div>
        <button type="submit" class="btn btn-primary">Split Chapters</button>
    </form>
    {{with .Result}}
    {{if .OK}}
    <div class="alert alert-success result" role="alert" id="result">
        Chapters split successfully and saved to: <code>{{.OutputDir}}</code>
        {{if .ArchiveURL}}<a class="alert-link" href="{{.ArchiveURL}}">Download zip</a>{{end}}
    </div>
    {{else}}
    <div class="alert alert-danger result" role="alert" id="result">{{.Message}}</div>
    {{end}}
    {{end}}
    <div class="usage">{{.Usage}}</div>
</div>
</body>
</html>
`))

type formResult struct {
	OK         bool
	Message    string
	OutputDir  string
	ArchiveURL string
}

type formPage struct {
	OutputPath string
	Result     *formResult
	Usage      template.HTML
}

func renderUsage() (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(usageMarkdown, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, formPage{OutputPath: defaultOutputPath})
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	page := formPage{OutputPath: defaultOutputPath}

	up, reqErr := s.readUpload(w, r)
	if reqErr != nil {
		msg := reqErr.msg
		if reqErr.badFile {
			msg = invalidFileMessage
		}
		page.Result = &formResult{Message: msg}
		s.renderPage(w, reqErr.code, page)
		return
	}
	page.OutputPath = r.FormValue("output_path")

	rec, err := s.runSplit(r, up)
	if err != nil {
		msg := err.Error()
		if pipeline.KindOf(err) == pipeline.KindInvalidInput {
			msg = invalidFileMessage
		}
		page.Result = &formResult{Message: msg}
		s.renderPage(w, statusForKind(pipeline.KindOf(err)), page)
		return
	}

	page.Result = &formResult{
		OK:         true,
		OutputDir:  rec.OutputDir,
		ArchiveURL: archiveURL(rec),
	}
	s.renderPage(w, http.StatusOK, page)
}

func (s *Server) renderPage(w http.ResponseWriter, code int, page formPage) {
	page.Usage = s.usage
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, page); err != nil {
		s.log.Error("render form failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}
