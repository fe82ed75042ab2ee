// server/internal/api/handlers/car_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
)

type CarHandler struct {
	Cars     CarStore
	Recorder Recorder
	Logger   *log.Logger
}

type CarRequestBody struct {
	Make        string `json:"make" binding:"required"`
	Model       string `json:"model" binding:"required"`
	Year        int    `json:"year" binding:"omitempty,gte=1900,lte=2100"`
	PlateNumber string `json:"plateNumber"`
	VIN         string `json:"vin"`
	Mileage     int64  `json:"mileage" binding:"gte=0"`
}

func (b *CarRequestBody) apply(car *models.Car) {
	car.Make = strings.TrimSpace(b.Make)
	car.Model = strings.TrimSpace(b.Model)
	car.Year = b.Year
	car.PlateNumber = strings.ToUpper(strings.TrimSpace(b.PlateNumber))
	car.VIN = strings.ToUpper(strings.TrimSpace(b.VIN))
	car.Mileage = b.Mileage
}

func (h *CarHandler) ListCars(c *gin.Context) {
	cars, err := h.Cars.List(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to list cars")
		return
	}
	c.JSON(http.StatusOK, cars)
}

func (h *CarHandler) GetCar(c *gin.Context) {
	car, err := h.Cars.FindByID(c.Request.Context(), c.Param("uid"), c.Param("carId"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load car")
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) CreateCar(c *gin.Context) {
	var req CarRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	uid := c.Param("uid")
	car := &models.Car{ID: uuid.NewString()}
	req.apply(car)

	ctx := c.Request.Context()
	if err := h.Cars.Create(ctx, uid, car); err != nil {
		respondError(c, h.Logger, err, "Failed to create car")
		return
	}

	e := activityEntry(models.ActivityCreate, "Added car "+car.Make+" "+car.Model, database.CarsCollection, car.Key)
	e.After = car
	h.Recorder.Record(ctx, currentUser(c), e)
	c.JSON(http.StatusCreated, car)
}

func (h *CarHandler) UpdateCar(c *gin.Context) {
	var req CarRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	car, err := h.Cars.FindByID(ctx, c.Param("uid"), c.Param("carId"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load car")
		return
	}
	before := *car

	req.apply(car)
	if err := h.Cars.Update(ctx, car); err != nil {
		respondError(c, h.Logger, err, "Failed to update car")
		return
	}

	e := activityEntry(models.ActivityUpdate, "Updated car "+car.Make+" "+car.Model, database.CarsCollection, car.Key)
	e.Before, e.After = &before, car
	h.Recorder.Record(ctx, currentUser(c), e)
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) DeleteCar(c *gin.Context) {
	ctx := c.Request.Context()
	uid, carID := c.Param("uid"), c.Param("carId")

	car, err := h.Cars.FindByID(ctx, uid, carID)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load car")
		return
	}
	if err := h.Cars.Delete(ctx, uid, carID); err != nil {
		respondError(c, h.Logger, err, "Failed to delete car")
		return
	}

	e := activityEntry(models.ActivityDelete, "Removed car "+car.Make+" "+car.Model, database.CarsCollection, car.Key)
	e.Before = car
	h.Recorder.Record(ctx, currentUser(c), e)
	c.Status(http.StatusNoContent)
}
