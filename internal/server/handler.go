package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/Decentr-net/citypulse/internal/chat"
	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/service"
	"github.com/Decentr-net/citypulse/internal/storage"
)

const avatarFormField = "file"

func (s server) listPosts(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts Posts ListPosts
	//
	// Return all posts, newest first. Served from cache when remote storage is unreachable.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: Posts
	//     schema:
	//       "$ref": "#/definitions/PostsView"

	writeOK(w, http.StatusOK, s.s.GetPosts(r.Context()))
}

func (s server) listMyPosts(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts/mine Posts ListMyPosts
	//
	// Return posts authored by the requester.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: Posts
	//     schema:
	//       "$ref": "#/definitions/PostsView"

	writeOK(w, http.StatusOK, s.s.GetMyPosts(r.Context()))
}

func (s server) listMyComments(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /comments/mine Posts ListMyComments
	//
	// Return comments left on requester's posts.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: Comments
	//     schema:
	//       "$ref": "#/definitions/CommentsView"

	writeOK(w, http.StatusOK, s.s.GetMyComments(r.Context()))
}

func (s server) newPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts/template Posts NewPost
	//
	// Return pre-filled post on behalf of requester. Post is not saved.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: Post template
	//     schema:
	//       "$ref": "#/definitions/Post"

	writeOK(w, http.StatusOK, s.s.NewPost(r.Context()))
}

func (s server) createPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts Posts CreatePost
	//
	// Create post with optional media. Missing fields are filled from the template.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/CreatePostRequest"
	// responses:
	//   '200':
	//     description: Post was saved. Warning is set when some media was not uploaded.
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '202':
	//     description: Post was saved locally and will be synced later.
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req CreatePostRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	media := make([]service.Media, len(req.Media))
	for i, v := range req.Media {
		media[i] = service.Media{
			Filename: v.Filename,
			Alt:      v.Alt,
			Data:     v.Data,
		}
	}

	p, err := s.s.CreatePost(r.Context(), &req.Post, media...)
	writePost(w, r, p, err)
}

func (s server) editPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation PUT /posts/{id} Posts EditPost
	//
	// Replace post. Status can only move forward, author and creation time can not be changed.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// - name: post
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/Post"
	// responses:
	//   '200':
	//     description: Post was saved
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '202':
	//     description: Post was saved locally and will be synced later.
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	var p entities.Post
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if p.ID == "" {
		p.ID = id
	}
	if p.ID != id {
		writeError(w, http.StatusBadRequest, "post id does not match path")
		return
	}

	out, err := s.s.EditPost(r.Context(), &p)
	writePost(w, r, out, err)
}

func (s server) like(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts/{id}/like Posts Like
	//
	// Increment post's likes.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: Updated post
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '202':
	//     description: Post was updated locally and will be synced later.
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	p, err := s.s.Like(r.Context(), chi.URLParam(r, "id"))
	writePost(w, r, p, err)
}

func (s server) dislike(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts/{id}/dislike Posts Dislike
	//
	// Increment post's dislikes.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: Updated post
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '202':
	//     description: Post was updated locally and will be synced later.
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	p, err := s.s.Dislike(r.Context(), chi.URLParam(r, "id"))
	writePost(w, r, p, err)
}

func (s server) share(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts/{id}/share Posts Share
	//
	// Increment post's shares.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: Updated post
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	p, err := s.s.Share(r.Context(), chi.URLParam(r, "id"))
	writePost(w, r, p, err)
}

func (s server) comment(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts/{id}/comments Posts Comment
	//
	// Append comment to post on behalf of requester.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// - name: comment
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/CommentRequest"
	// responses:
	//   '200':
	//     description: Updated post
	//     schema:
	//       "$ref": "#/definitions/PostResponse"
	//   '400':
	//     description: empty comment
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req CommentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.s.Comment(r.Context(), chi.URLParam(r, "id"), req.Text)
	writePost(w, r, p, err)
}

func (s server) deletePost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation DELETE /posts/{id} Posts DeletePost
	//
	// Delete post. Post is deleted only when remote storage is reachable.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: Post was deleted
	//     schema:
	//       "$ref": "#/definitions/EmptyResponse"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '503':
	//     description: remote storage is unavailable
	//     schema:
	//       "$ref": "#/definitions/Error"

	err := s.s.DeletePost(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeOK(w, http.StatusOK, EmptyResponse{})
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeInternalErrorf(r.Context(), w, "failed to delete post: %s", err.Error())
	}
}

func (s server) getProfile(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /profile Profile GetProfile
	//
	// Return requester's profile. Guest and new users get a default one.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: Profile
	//     schema:
	//       "$ref": "#/definitions/ProfileView"

	writeOK(w, http.StatusOK, s.s.GetProfile(r.Context()))
}

func (s server) saveProfile(w http.ResponseWriter, r *http.Request) {
	// swagger:operation PUT /profile Profile SaveProfile
	//
	// Save requester's profile with optional avatar.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/SaveProfileRequest"
	// responses:
	//   '200':
	//     description: Profile was saved. Warning is set when avatar was not uploaded.
	//     schema:
	//       "$ref": "#/definitions/ProfileResponse"
	//   '202':
	//     description: Profile was saved locally and will be synced later.
	//     schema:
	//       "$ref": "#/definitions/ProfileResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req SaveProfileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var avatar *service.Media
	if req.Avatar != nil {
		avatar = &service.Media{
			Filename: req.Avatar.Filename,
			Data:     req.Avatar.Data,
		}
	}

	p, err := s.s.SaveProfile(r.Context(), &req.Profile, avatar)
	writeProfile(w, r, p, err)
}

func (s server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /profile/avatar Profile UploadAvatar
	//
	// Replace requester's avatar.
	//
	// ---
	// consumes:
	// - multipart/form-data
	// produces:
	// - application/json
	// parameters:
	// - name: file
	//   in: formData
	//   required: true
	//   type: file
	// responses:
	//   '200':
	//     description: Profile with new avatar. Warning is set when avatar was not uploaded.
	//     schema:
	//       "$ref": "#/definitions/ProfileResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	f, h, err := r.FormFile(avatarFormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file: "+err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file: "+err.Error())
		return
	}

	current := s.s.GetProfile(r.Context())

	p, err := s.s.SaveProfile(r.Context(), current.Profile, &service.Media{
		Filename: h.Filename,
		Data:     data,
	})
	writeProfile(w, r, p, err)
}

func (s server) signOut(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /signout Profile SignOut
	//
	// Forget requester's cached identity.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: Signed out
	//     schema:
	//       "$ref": "#/definitions/EmptyResponse"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	if err := s.s.SignOut(r.Context()); err != nil {
		writeInternalErrorf(r.Context(), w, "failed to sign out: %s", err.Error())
		return
	}

	writeOK(w, http.StatusOK, EmptyResponse{})
}

func (s server) getStats(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /stats Stats GetStats
	//
	// Return posts count by category, overall and for today.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: Summary
	//     schema:
	//       "$ref": "#/definitions/SummaryView"

	writeOK(w, http.StatusOK, s.s.Summarize(r.Context(), s.now()))
}

func (s server) askChat(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /chat Stats Chat
	//
	// Answer question about reported issues.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/ChatRequest"
	// responses:
	//   '200':
	//     description: Answer
	//     schema:
	//       "$ref": "#/definitions/ChatResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '503':
	//     description: chat is not configured
	//     schema:
	//       "$ref": "#/definitions/Error"

	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var req ChatRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	summary := s.s.Summarize(r.Context(), s.now())

	answer, err := s.chat.Answer(r.Context(), chat.Prompt(req.Query, summary.Summary))
	if err != nil {
		writeInternalErrorf(r.Context(), w, "failed to answer: %s", err.Error())
		return
	}

	writeOK(w, http.StatusOK, ChatResponse{Response: answer})
}

func writePost(w http.ResponseWriter, r *http.Request, p *entities.Post, err error) {
	writeSaved(w, r, p != nil, func(warning string) interface{} {
		return PostResponse{Post: p, Warning: warning}
	}, err)
}

func writeProfile(w http.ResponseWriter, r *http.Request, p *entities.Profile, err error) {
	writeSaved(w, r, p != nil, func(warning string) interface{} {
		return ProfileResponse{Profile: p, Warning: warning}
	}, err)
}

// writeSaved writes result of write operation. Entity which was saved partially is returned with warning.
func writeSaved(w http.ResponseWriter, r *http.Request, saved bool, resp func(warning string) interface{}, err error) {
	switch {
	case err == nil:
		writeOK(w, http.StatusOK, resp(""))
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrUnavailable) && saved:
		writeOK(w, http.StatusAccepted, resp(err.Error()))
	case errors.Is(err, storage.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrAssetUploadFailed) && saved:
		writeOK(w, http.StatusOK, resp(err.Error()))
	default:
		writeInternalErrorf(r.Context(), w, "failed to save: %s", err.Error())
	}
}
