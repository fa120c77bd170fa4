package rpc

import (
	"net/http"

	"github.com/diggyk/gatehouse/pkg/gatehouse/admin"
	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/diggyk/gatehouse/pkg/gatehouse/storage"
	"github.com/labstack/echo/v4"
)

// handler adapts [admin.Service] to echo route handlers. Every handler
// follows the same shape: bind the body (or none), call into svc, map the
// result or error onto the HTTP response.
type handler struct {
	svc *admin.Service
}

func writeError(c echo.Context, err error) error {
	status := httpStatusFor(err)
	return c.JSON(status, errorBody{Code: int32(status), Message: err.Error()})
}

// --- check --------------------------------------------------------------

func (h *handler) check(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	decision, err := h.svc.Check(req.toEngineRequest())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, checkResponse{Decision: decisionString(decision)})
}

// --- target ---------------------------------------------------------------

func (h *handler) addTarget(c echo.Context) error {
	var rec storage.TargetRecord
	if err := c.Bind(&rec); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	stored, err := h.svc.AddTarget(c.Request().Context(), storage.TargetFromRecord(rec))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, storage.TargetToRecord(stored))
}

func (h *handler) modifyTarget(c echo.Context) error {
	var req targetChangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	updated, err := h.svc.ModifyTarget(c.Request().Context(), c.Param("type"), c.Param("name"), req.toRegistryChange())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, storage.TargetToRecord(updated))
}

func (h *handler) removeTarget(c echo.Context) error {
	if err := h.svc.RemoveTarget(c.Request().Context(), c.Param("type"), c.Param("name")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) getTargets(c echo.Context) error {
	filter := registry.TargetFilter{Name: c.QueryParam("name"), Type: c.QueryParam("type")}
	targets := h.svc.GetTargets(filter)
	recs := make([]storage.TargetRecord, 0, len(targets))
	for _, t := range targets {
		recs = append(recs, storage.TargetToRecord(t))
	}
	return c.JSON(http.StatusOK, recs)
}

// --- actor ------------------------------------------------------------

func (h *handler) addActor(c echo.Context) error {
	var rec storage.ActorRecord
	if err := c.Bind(&rec); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	stored, err := h.svc.AddActor(c.Request().Context(), storage.ActorFromRecord(rec))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, storage.ActorToRecord(stored))
}

func (h *handler) modifyActor(c echo.Context) error {
	var req actorChangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	updated, err := h.svc.ModifyActor(c.Request().Context(), c.Param("name"), c.Param("type"), req.toRegistryChange())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, storage.ActorToRecord(updated))
}

func (h *handler) removeActor(c echo.Context) error {
	if err := h.svc.RemoveActor(c.Request().Context(), c.Param("name"), c.Param("type")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) getActors(c echo.Context) error {
	filter := registry.ActorFilter{Name: c.QueryParam("name"), Type: c.QueryParam("type")}
	actors := h.svc.GetActors(filter)
	recs := make([]storage.ActorRecord, 0, len(actors))
	for _, a := range actors {
		recs = append(recs, storage.ActorToRecord(a))
	}
	return c.JSON(http.StatusOK, recs)
}

// --- group ------------------------------------------------------------

func (h *handler) addGroup(c echo.Context) error {
	var rec storage.GroupRecord
	if err := c.Bind(&rec); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	name, description, roles := storage.GroupFromRecord(rec)
	members := storage.MembersFromRecord(rec.Members)
	stored, err := h.svc.AddGroup(c.Request().Context(), name, description, members, roles)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, storage.GroupToRecord(stored))
}

func (h *handler) modifyGroup(c echo.Context) error {
	var req groupChangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	updated, err := h.svc.ModifyGroup(c.Request().Context(), c.Param("name"), req.toRegistryChange())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, storage.GroupToRecord(updated))
}

func (h *handler) removeGroup(c echo.Context) error {
	if err := h.svc.RemoveGroup(c.Request().Context(), c.Param("name")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) getGroups(c echo.Context) error {
	filter := registry.GroupFilter{Name: c.QueryParam("name"), Role: c.QueryParam("role")}
	groups := h.svc.GetGroups(filter)
	recs := make([]storage.GroupRecord, 0, len(groups))
	for _, g := range groups {
		recs = append(recs, storage.GroupToRecord(g))
	}
	return c.JSON(http.StatusOK, recs)
}

// --- role ---------------------------------------------------------------

func (h *handler) addRole(c echo.Context) error {
	var rec storage.RoleRecord
	if err := c.Bind(&rec); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	name, description, grantedTo := storage.RoleFromRecord(rec)
	stored, err := h.svc.AddRole(c.Request().Context(), name, description, grantedTo)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, storage.RoleToRecord(stored))
}

func (h *handler) modifyRole(c echo.Context) error {
	var req roleChangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	updated, err := h.svc.ModifyRole(c.Request().Context(), c.Param("name"), req.toRegistryChange())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, storage.RoleToRecord(updated))
}

func (h *handler) removeRole(c echo.Context) error {
	if err := h.svc.RemoveRole(c.Request().Context(), c.Param("name")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) getRoles(c echo.Context) error {
	filter := registry.RoleFilter{Name: c.QueryParam("name"), GrantedTo: c.QueryParam("granted_to")}
	roles := h.svc.GetRoles(filter)
	recs := make([]storage.RoleRecord, 0, len(roles))
	for _, r := range roles {
		recs = append(recs, storage.RoleToRecord(r))
	}
	return c.JSON(http.StatusOK, recs)
}

// --- policy -------------------------------------------------------------

func (h *handler) addPolicy(c echo.Context) error {
	var rec storage.PolicyRecord
	if err := c.Bind(&rec); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}

	stored, err := h.svc.AddPolicy(c.Request().Context(), storage.PolicyFromRecord(rec))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, storage.PolicyToRecord(stored))
}

func (h *handler) modifyPolicy(c echo.Context) error {
	var rec storage.PolicyRecord
	if err := c.Bind(&rec); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	}
	rec.Name = c.Param("name")

	updated, err := h.svc.ModifyPolicy(c.Request().Context(), storage.PolicyFromRecord(rec))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, storage.PolicyToRecord(updated))
}

func (h *handler) removePolicy(c echo.Context) error {
	if err := h.svc.RemovePolicy(c.Request().Context(), c.Param("name")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) getPolicies(c echo.Context) error {
	filter := registry.PolicyFilter{Name: c.QueryParam("name")}
	policies := h.svc.GetPolicies(filter)
	recs := make([]storage.PolicyRecord, 0, len(policies))
	for _, p := range policies {
		recs = append(recs, storage.PolicyToRecord(p))
	}
	return c.JSON(http.StatusOK, recs)
}
